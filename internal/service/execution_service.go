package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/answer"
	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/models"
	"github.com/cheatwell/cheatwell-api/internal/observability"
	"github.com/cheatwell/cheatwell-api/internal/render"
	"github.com/cheatwell/cheatwell-api/internal/repository"
	"github.com/cheatwell/cheatwell-api/pkg/ai"
	"github.com/cheatwell/cheatwell-api/pkg/extract"
)

var (
	// ErrNoInput indicates the submission carried nothing to work on.
	ErrNoInput = errors.New("submission needs a prompt, file, image or voice note")
	// ErrFileTooLarge indicates an upload above the configured limit.
	ErrFileTooLarge = errors.New("uploaded file is too large")
	// ErrBadFileType indicates an upload whose sniffed type does not
	// match its slot.
	ErrBadFileType = errors.New("unsupported file type for this field")
	// ErrGeneratorUnavailable indicates the model backend is missing.
	ErrGeneratorUnavailable = errors.New("generation backend is not configured")
)

// UploadedFile is one part of the multipart submission.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// ExecutionInput bundles the form fields with the optional uploads.
type ExecutionInput struct {
	Request dto.ExecuteRequest
	File    *UploadedFile
	Image   *UploadedFile
	Voice   *UploadedFile
}

// DocumentRenderer produces the student-facing document.
type DocumentRenderer interface {
	Render(content string, format render.Format, filename string, info *render.StudentInfo) (string, error)
}

// ExecutionService runs the whole assignment pipeline: intake,
// research, generation, recovery, post-processing, rendering,
// delivery and archiving.
type ExecutionService interface {
	Execute(ctx context.Context, input ExecutionInput) (dto.ExecuteResponse, error)
}

type executionService struct {
	generator      ai.Generator
	research       ResearchService
	style          StyleService
	humanizer      HumanizerService
	factcheck      FactCheckService
	renderer       DocumentRenderer
	delivery       DeliveryService
	studentDetails StudentDetailsService
	repo           repository.ConversationRepository
	validator      *validator.Validate
	nats           *nats.Conn
	natsSubject    string
	maxUploadBytes int64
	logger         zerolog.Logger
}

// ExecutionDeps lists the collaborators of the pipeline. generator,
// renderer and validator are required; everything else may be nil and
// the matching stage degrades gracefully.
type ExecutionDeps struct {
	Generator      ai.Generator
	Research       ResearchService
	Style          StyleService
	Humanizer      HumanizerService
	FactCheck      FactCheckService
	Renderer       DocumentRenderer
	Delivery       DeliveryService
	StudentDetails StudentDetailsService
	Repo           repository.ConversationRepository
	Validator      *validator.Validate
	NATS           *nats.Conn
	NATSSubject    string
	MaxUploadBytes int64
}

// NewExecutionService wires the pipeline coordinator.
func NewExecutionService(deps ExecutionDeps, logger zerolog.Logger) ExecutionService {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 * 1024 * 1024
	}
	return &executionService{
		generator:      deps.Generator,
		research:       deps.Research,
		style:          deps.Style,
		humanizer:      deps.Humanizer,
		factcheck:      deps.FactCheck,
		renderer:       deps.Renderer,
		delivery:       deps.Delivery,
		studentDetails: deps.StudentDetails,
		repo:           deps.Repo,
		validator:      deps.Validator,
		nats:           deps.NATS,
		natsSubject:    deps.NATSSubject,
		maxUploadBytes: deps.MaxUploadBytes,
		logger:         logger.With().Str("component", "execution_service").Logger(),
	}
}

// Execute runs the pipeline. Intake, extraction and generation failures
// abort the run; every stage after generation is best effort and its
// outcome is reported honestly in the response instead of failing the
// whole submission.
func (s *executionService) Execute(ctx context.Context, input ExecutionInput) (dto.ExecuteResponse, error) {
	if s.generator == nil {
		return dto.ExecuteResponse{}, ErrGeneratorUnavailable
	}

	req := input.Request
	if err := s.validator.Struct(req); err != nil {
		return dto.ExecuteResponse{}, err
	}

	if strings.TrimSpace(req.Prompt) == "" && input.File == nil && input.Image == nil && input.Voice == nil {
		return dto.ExecuteResponse{}, ErrNoInput
	}

	generation := ai.GenerationInput{
		Prompt:       req.Prompt,
		StudentLevel: req.StudentLevel,
		Department:   req.Department,
	}

	// Intake: every upload is size-checked and sniffed before use.
	fileText, err := s.intakeFile(input.File)
	if err != nil {
		return dto.ExecuteResponse{}, err
	}
	generation.FileContent = fileText

	generation.ImageDataURL, err = s.intakeImage(input.Image)
	if err != nil {
		return dto.ExecuteResponse{}, err
	}

	generation.Audio, err = s.intakeVoice(input.Voice)
	if err != nil {
		return dto.ExecuteResponse{}, err
	}

	response := dto.ExecuteResponse{}

	if req.UseResearch && s.research != nil {
		start := time.Now()
		topic := req.Prompt
		if topic == "" {
			topic = firstWords(fileText, 30)
		}
		research, err := s.research.Research(ctx, topic, 0)
		observability.PipelineStage().WithLabelValues("research").Observe(time.Since(start).Seconds())
		if err != nil {
			s.logger.Warn().Err(err).Msg("research failed, continuing without context")
		} else {
			generation.ResearchContext = research.Context
			response.ResearchUsed = true
		}
	}

	if req.MirrorStyle && s.style != nil && fileText != "" {
		generation.StyleInstruction = s.style.Mirror(ctx, fileText)
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, generation)
	observability.PipelineStage().WithLabelValues("generate").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.PipelineRuns().WithLabelValues("error").Inc()
		return dto.ExecuteResponse{}, fmt.Errorf("generation failed: %w", err)
	}

	extraction := answer.Extract(raw, req.Prompt)
	result := extraction.Result
	observability.ExtractionTiers().WithLabelValues(extraction.Tier.String()).Inc()
	response.ConversationID = result.ID
	response.ExtractionTier = extraction.Tier.String()

	if req.StealthMode && s.humanizer != nil {
		start := time.Now()
		humanized, err := s.humanizer.Humanize(ctx, result.Answer, req.HumanizerLevel, req.StudentLevel)
		observability.PipelineStage().WithLabelValues("humanize").Observe(time.Since(start).Seconds())
		if err != nil {
			s.logger.Warn().Err(err).Msg("humanizing failed, keeping original answer")
		} else {
			result.Answer = humanized
			result.Humanized = true
			response.Humanized = true
		}
	}

	if req.FactCheck && s.factcheck != nil {
		start := time.Now()
		verification, err := s.factcheck.Verify(ctx, result)
		observability.PipelineStage().WithLabelValues("factcheck").Observe(time.Since(start).Seconds())
		if err != nil {
			s.logger.Warn().Err(err).Msg("fact check failed, shipping unverified answer")
		} else {
			result.Verification = verification
			response.TrustScore = &verification.TrustScore
		}
	}

	documentPath := s.renderDocument(req, result)
	if documentPath != "" {
		name := documentPath
		response.FileGenerated = &name
	}

	response.EmailSent = s.deliverEmail(ctx, req, documentPath)
	response.WhatsAppSent = s.deliverWhatsApp(ctx, req, documentPath)

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode result")
		payload = []byte("{}")
	}
	response.Result = payload

	s.archive(ctx, req, input, result, response, payload, generation.ResearchContext)
	s.publishCompletion(result.ID, response)

	observability.PipelineRuns().WithLabelValues("completed").Inc()
	s.logger.Info().
		Str("conversation_id", result.ID).
		Str("tier", response.ExtractionTier).
		Bool("email_sent", response.EmailSent).
		Bool("whatsapp_sent", response.WhatsAppSent).
		Msg("pipeline completed")

	return response, nil
}

func (s *executionService) intakeFile(file *UploadedFile) (string, error) {
	if file == nil {
		return "", nil
	}
	if err := s.checkSize(file); err != nil {
		return "", err
	}

	mtype := mimetype.Detect(file.Data)
	if !isDocumentType(mtype) {
		return "", fmt.Errorf("%w: %s is %s", ErrBadFileType, file.Filename, mtype.String())
	}

	text, err := extract.Text(file.Filename, file.Data)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", file.Filename, err)
	}
	return text, nil
}

func (s *executionService) intakeImage(image *UploadedFile) (string, error) {
	if image == nil {
		return "", nil
	}
	if err := s.checkSize(image); err != nil {
		return "", err
	}

	mtype := mimetype.Detect(image.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrBadFileType, image.Filename, mtype.String())
	}

	encoded := base64.StdEncoding.EncodeToString(image.Data)
	return fmt.Sprintf("data:%s;base64,%s", mtype.String(), encoded), nil
}

func (s *executionService) intakeVoice(voice *UploadedFile) (*ai.AudioInput, error) {
	if voice == nil {
		return nil, nil
	}
	if err := s.checkSize(voice); err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(voice.Data)
	if !strings.HasPrefix(mtype.String(), "audio/") {
		return nil, fmt.Errorf("%w: %s is %s", ErrBadFileType, voice.Filename, mtype.String())
	}

	return &ai.AudioInput{Data: voice.Data, MIMEType: mtype.String()}, nil
}

func (s *executionService) checkSize(file *UploadedFile) error {
	if int64(len(file.Data)) > s.maxUploadBytes {
		return fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, file.Filename, len(file.Data))
	}
	return nil
}

// renderDocument writes the output document. Failures leave the run
// without a file rather than failing it.
func (s *executionService) renderDocument(req dto.ExecuteRequest, result answer.AssignmentResult) string {
	if s.renderer == nil {
		return ""
	}

	format := req.OutputFormat
	if format == "" {
		format = "pdf"
	}
	filename := fmt.Sprintf("assignment_%s.%s", result.ID, format)

	start := time.Now()
	path, err := s.renderer.Render(documentContent(result), render.Format(format), filename, s.letterhead(req))
	observability.PipelineStage().WithLabelValues("render").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.DocumentsRendered().WithLabelValues(format, "error").Inc()
		s.logger.Warn().Err(err).Str("format", format).Msg("document rendering failed")
		return ""
	}

	observability.DocumentsRendered().WithLabelValues(format, "ok").Inc()
	return path
}

func (s *executionService) letterhead(req dto.ExecuteRequest) *render.StudentInfo {
	info := render.StudentInfo{
		Name:       req.StudentName,
		Matricule:  req.Matricule,
		School:     req.SchoolName,
		Department: req.Department,
		Level:      req.StudentLevel,
	}

	// Stored details fill whatever the request left blank.
	if s.studentDetails != nil {
		stored := s.studentDetails.Get()
		if info.Name == "" {
			info.Name = stored.Name
		}
		if info.Matricule == "" {
			info.Matricule = stored.Matricule
		}
		if info.School == "" {
			info.School = stored.School
		}
		if info.Department == "" {
			info.Department = stored.Department
		}
		if info.Level == "" {
			info.Level = stored.Level
		}
	}

	if info == (render.StudentInfo{}) {
		return nil
	}
	return &info
}

func (s *executionService) deliverEmail(ctx context.Context, req dto.ExecuteRequest, documentPath string) bool {
	if req.Email == "" || s.delivery == nil {
		return false
	}
	// Nothing to attach means nothing to deliver.
	if documentPath == "" {
		return false
	}

	err := s.delivery.SendEmail(ctx, req.Email, "", "", documentPath)
	if err != nil {
		s.logger.Warn().Err(err).Str("to", req.Email).Msg("email delivery failed")
		return false
	}
	return true
}

func (s *executionService) deliverWhatsApp(ctx context.Context, req dto.ExecuteRequest, documentPath string) bool {
	if req.WhatsAppNumber == "" || s.delivery == nil {
		return false
	}
	if documentPath == "" {
		return false
	}

	err := s.delivery.SendWhatsApp(ctx, req.WhatsAppNumber, "", documentPath)
	if err != nil {
		s.logger.Warn().Err(err).Str("to", req.WhatsAppNumber).Msg("whatsapp delivery failed")
		return false
	}
	return true
}

func (s *executionService) archive(ctx context.Context, req dto.ExecuteRequest, input ExecutionInput, result answer.AssignmentResult, response dto.ExecuteResponse, payload []byte, researchContext string) {
	if s.repo == nil {
		return
	}

	record := models.Conversation{
		ID:               result.ID,
		Title:            result.Title,
		Prompt:           req.Prompt,
		StudentLevel:     req.StudentLevel,
		Department:       req.Department,
		SubmissionFormat: submissionFormat(input),
		SchoolName:       req.SchoolName,
		UseResearch:      req.UseResearch,
		StealthMode:      req.StealthMode,
		StyleMirrored:    req.MirrorStyle,
		EmailSent:        response.EmailSent,
		WhatsAppSent:     response.WhatsAppSent,
		FileGenerated:    response.FileGenerated,
		TrustScore:       response.TrustScore,
		ResearchContext:  researchContext,
		ResponseJSON:     payload,
	}

	if result.Verification != nil {
		if verification, err := json.Marshal(result.Verification); err == nil {
			record.VerificationJSON = verification
		}
	}

	if err := s.repo.Save(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("conversation_id", result.ID).Msg("failed to archive conversation")
	}
}

func (s *executionService) publishCompletion(id string, response dto.ExecuteResponse) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	event, err := json.Marshal(map[string]any{
		"conversation_id": id,
		"extraction_tier": response.ExtractionTier,
		"email_sent":      response.EmailSent,
		"whatsapp_sent":   response.WhatsAppSent,
		"file_generated":  response.FileGenerated,
	})
	if err != nil {
		return
	}

	if err := s.nats.Publish(s.natsSubject, event); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish completion event")
	}
}

// documentContent lays out the rendered document body from the
// structured result.
func documentContent(result answer.AssignmentResult) string {
	var builder strings.Builder

	if result.Title != "" {
		builder.WriteString("# ")
		builder.WriteString(result.Title)
		builder.WriteString("\n\n")
	}
	if result.Question != "" {
		builder.WriteString("**Question/Topic:** ")
		builder.WriteString(result.Question)
		builder.WriteString("\n\n----\n\n")
	}
	builder.WriteString(result.Answer)
	if result.Summary != "" {
		builder.WriteString("\n\n## Summary\n\n")
		builder.WriteString(result.Summary)
	}

	return builder.String()
}

func submissionFormat(input ExecutionInput) string {
	switch {
	case input.File != nil:
		return "file"
	case input.Image != nil:
		return "image"
	case input.Voice != nil:
		return "voice"
	default:
		return "text"
	}
}

func isDocumentType(mtype *mimetype.MIME) bool {
	if mtype.Is("application/pdf") || mtype.Is("application/zip") ||
		mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") {
		return true
	}
	return strings.HasPrefix(mtype.String(), "text/")
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
