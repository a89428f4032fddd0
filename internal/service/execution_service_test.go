package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cheatwell/cheatwell-api/internal/answer"
	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/models"
	"github.com/cheatwell/cheatwell-api/internal/render"
	"github.com/cheatwell/cheatwell-api/pkg/ai"
)

type stubGenerator struct {
	raw       string
	err       error
	lastInput ai.GenerationInput
}

func (s *stubGenerator) Generate(_ context.Context, input ai.GenerationInput) (string, error) {
	s.lastInput = input
	if s.err != nil {
		return "", s.err
	}
	return s.raw, nil
}

type stubRenderer struct {
	path     string
	err      error
	lastInfo *render.StudentInfo
	lastName string
	content  string
}

func (s *stubRenderer) Render(content string, _ render.Format, filename string, info *render.StudentInfo) (string, error) {
	s.content = content
	s.lastName = filename
	s.lastInfo = info
	if s.err != nil {
		return "", s.err
	}
	return s.path, nil
}

type stubResearch struct {
	response dto.ResearchResponse
	err      error
	calls    int
}

func (s *stubResearch) Research(_ context.Context, query string, _ int) (dto.ResearchResponse, error) {
	s.calls++
	if s.err != nil {
		return dto.ResearchResponse{}, s.err
	}
	resp := s.response
	resp.Query = query
	return resp, nil
}

type stubHumanizer struct {
	reply string
	err   error
}

func (s *stubHumanizer) Humanize(_ context.Context, _, _, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubFactCheck struct {
	verification *answer.Verification
	err          error
	calls        int
}

func (s *stubFactCheck) Verify(_ context.Context, _ answer.AssignmentResult) (*answer.Verification, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.verification, nil
}

type stubDelivery struct {
	emailErr    error
	whatsappErr error
	emailTo     string
	whatsappTo  string
	emailPath   string
}

func (s *stubDelivery) SendEmail(_ context.Context, to, _, _, attachmentPath string) error {
	s.emailTo = to
	s.emailPath = attachmentPath
	return s.emailErr
}

func (s *stubDelivery) SendWhatsApp(_ context.Context, to, _, _ string) error {
	s.whatsappTo = to
	return s.whatsappErr
}

func (s *stubDelivery) ResolveDocument(filename string) (string, error) {
	return filename, nil
}

type memoryRepo struct {
	saved []models.Conversation
	err   error
}

func (m *memoryRepo) Save(_ context.Context, c *models.Conversation) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *c)
	return nil
}

func (m *memoryRepo) List(_ context.Context, _ int) ([]models.Conversation, error) {
	return m.saved, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (models.Conversation, error) {
	for _, c := range m.saved {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Conversation{}, gorm.ErrRecordNotFound
}

func (m *memoryRepo) Delete(_ context.Context, _ string) error { return nil }

const validRaw = `{"id":"7b6e0a2c-6f67-4a18-9ab1-15c86a2e7e91","title":"Entropy","question":"Define entropy","answer":"# Entropy\n\nEntropy measures disorder.","summary":"Disorder measure.","note":"","more":""}`

func newPipeline(gen *stubGenerator, deps ExecutionDeps) ExecutionService {
	deps.Generator = gen
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return NewExecutionService(deps, zerolog.Nop())
}

func zipUpload(t *testing.T, text string) *UploadedFile {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("word/document.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &UploadedFile{Filename: "homework.docx", Data: buf.Bytes()}
}

func TestExecutePromptOnlyHappyPath(t *testing.T) {
	gen := &stubGenerator{raw: validRaw}
	repo := &memoryRepo{}
	renderer := &stubRenderer{path: "/out/assignment_7b6e0a2c-6f67-4a18-9ab1-15c86a2e7e91.pdf"}

	svc := newPipeline(gen, ExecutionDeps{Renderer: renderer, Repo: repo})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{Prompt: "Define entropy", StudentLevel: "University"},
	})
	require.NoError(t, err)
	require.Equal(t, "7b6e0a2c-6f67-4a18-9ab1-15c86a2e7e91", resp.ConversationID)
	require.Equal(t, "parsed", resp.ExtractionTier)
	require.NotNil(t, resp.FileGenerated)
	require.Equal(t, "assignment_7b6e0a2c-6f67-4a18-9ab1-15c86a2e7e91.pdf", renderer.lastName)
	require.Contains(t, renderer.content, "# Entropy")
	require.Contains(t, renderer.content, "Question/Topic")

	var result answer.AssignmentResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Equal(t, "Entropy", result.Title)

	require.Len(t, repo.saved, 1)
	require.Equal(t, "text", repo.saved[0].SubmissionFormat)
	require.Equal(t, "Define entropy", repo.saved[0].Prompt)
}

func TestExecuteRequiresSomeInput(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{})

	_, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "   "}})
	require.ErrorIs(t, err, ErrNoInput)
}

func TestExecuteValidatesFormFields(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{})

	_, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{Prompt: "x", Email: "not-an-email"},
	})
	require.Error(t, err)
}

func TestExecuteRejectsOversizedUpload(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{MaxUploadBytes: 16})

	_, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{},
		File:    &UploadedFile{Filename: "big.txt", Data: bytes.Repeat([]byte("a"), 64)},
	})
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExecuteRejectsWrongImageType(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{})

	_, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{},
		Image:   &UploadedFile{Filename: "photo.png", Data: []byte("just text, not an image")},
	})
	require.ErrorIs(t, err, ErrBadFileType)
}

func TestExecuteExtractsDocumentText(t *testing.T) {
	gen := &stubGenerator{raw: validRaw}
	svc := newPipeline(gen, ExecutionDeps{})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{},
		File:    zipUpload(t, "Solve exercise four."),
	})
	require.NoError(t, err)
	require.Contains(t, gen.lastInput.FileContent, "Solve exercise four.")
	require.NotEmpty(t, resp.ConversationID)
}

func TestExecuteResearchFlowsIntoPrompt(t *testing.T) {
	gen := &stubGenerator{raw: validRaw}
	research := &stubResearch{response: dto.ResearchResponse{Context: "Recent sources say X."}}
	svc := newPipeline(gen, ExecutionDeps{Research: research})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{Prompt: "Explain X", UseResearch: true},
	})
	require.NoError(t, err)
	require.True(t, resp.ResearchUsed)
	require.Equal(t, "Recent sources say X.", gen.lastInput.ResearchContext)
	require.Equal(t, 1, research.calls)
}

func TestExecuteResearchFailureIsNotFatal(t *testing.T) {
	gen := &stubGenerator{raw: validRaw}
	svc := newPipeline(gen, ExecutionDeps{Research: &stubResearch{err: errors.New("provider down")}})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{Prompt: "Explain X", UseResearch: true},
	})
	require.NoError(t, err)
	require.False(t, resp.ResearchUsed)
	require.Empty(t, gen.lastInput.ResearchContext)
}

func TestExecuteGenerationFailureIsFatal(t *testing.T) {
	svc := newPipeline(&stubGenerator{err: errors.New("quota exceeded")}, ExecutionDeps{})

	_, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "x"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "generation failed")
}

func TestExecuteStealthModeHumanizes(t *testing.T) {
	gen := &stubGenerator{raw: validRaw}
	svc := newPipeline(gen, ExecutionDeps{Humanizer: &stubHumanizer{reply: "Entropy is basically how messy things get."}})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{Prompt: "x", StealthMode: true},
	})
	require.NoError(t, err)
	require.True(t, resp.Humanized)

	var result answer.AssignmentResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Equal(t, "Entropy is basically how messy things get.", result.Answer)
	require.True(t, result.Humanized)
}

func TestExecuteHumanizerFailureKeepsOriginal(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{Humanizer: &stubHumanizer{err: errors.New("down")}})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{Prompt: "x", StealthMode: true},
	})
	require.NoError(t, err)
	require.False(t, resp.Humanized)

	var result answer.AssignmentResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Contains(t, result.Answer, "Entropy measures disorder.")
}

func TestExecuteFactCheckAttachesVerification(t *testing.T) {
	verification := &answer.Verification{TrustScore: 0.9, IsReliable: true}
	repo := &memoryRepo{}
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{FactCheck: &stubFactCheck{verification: verification}, Repo: repo})

	resp, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "x", FactCheck: true}})
	require.NoError(t, err)
	require.NotNil(t, resp.TrustScore)
	require.InDelta(t, 0.9, *resp.TrustScore, 1e-9)
	require.NotEmpty(t, repo.saved[0].VerificationJSON)
}

func TestExecuteFactCheckFailureIsNotFatal(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{FactCheck: &stubFactCheck{err: errors.New("down")}})

	resp, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "x", FactCheck: true}})
	require.NoError(t, err)
	require.Nil(t, resp.TrustScore)
}

func TestExecuteFactCheckOnlyRunsWhenRequested(t *testing.T) {
	factcheck := &stubFactCheck{verification: &answer.Verification{TrustScore: 1}}
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{FactCheck: factcheck})

	resp, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "x"}})
	require.NoError(t, err)
	require.Nil(t, resp.TrustScore)
	require.Zero(t, factcheck.calls)
}

func TestExecuteRenderFailureLeavesNoFile(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{Renderer: &stubRenderer{err: errors.New("disk full")}})

	resp, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "x"}})
	require.NoError(t, err)
	require.Nil(t, resp.FileGenerated)
}

func TestExecuteDeliveryFlagsAreHonest(t *testing.T) {
	delivery := &stubDelivery{whatsappErr: errors.New("number unreachable")}
	renderer := &stubRenderer{path: "/out/doc.pdf"}
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{Delivery: delivery, Renderer: renderer})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{
			Prompt:         "x",
			Email:          "student@example.com",
			WhatsAppNumber: "+237650000000",
		},
	})
	require.NoError(t, err)
	require.True(t, resp.EmailSent)
	require.False(t, resp.WhatsAppSent)
	require.Equal(t, "student@example.com", delivery.emailTo)
	require.Equal(t, "/out/doc.pdf", delivery.emailPath)
}

func TestExecuteSkipsDeliveryWithoutDocument(t *testing.T) {
	delivery := &stubDelivery{}
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{
		Delivery: delivery,
		Renderer: &stubRenderer{err: errors.New("disk full")},
	})

	resp, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{
			Prompt:         "x",
			Email:          "student@example.com",
			WhatsAppNumber: "+237650000000",
		},
	})
	require.NoError(t, err)
	require.Nil(t, resp.FileGenerated)
	require.False(t, resp.EmailSent)
	require.False(t, resp.WhatsAppSent)
	require.Empty(t, delivery.emailTo)
	require.Empty(t, delivery.whatsappTo)
}

func TestExecuteSkipsDeliveryWithoutAddresses(t *testing.T) {
	delivery := &stubDelivery{}
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{Delivery: delivery})

	resp, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "x"}})
	require.NoError(t, err)
	require.False(t, resp.EmailSent)
	require.False(t, resp.WhatsAppSent)
	require.Empty(t, delivery.emailTo)
}

func TestExecuteLetterheadMergesStoredDetails(t *testing.T) {
	details := NewStudentDetailsService(zerolog.Nop())
	details.Save(dto.StudentDetailsRequest{Name: "Stored Name", School: "Stored School"})

	renderer := &stubRenderer{path: "/out/doc.pdf"}
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{Renderer: renderer, StudentDetails: details})

	_, err := svc.Execute(context.Background(), ExecutionInput{
		Request: dto.ExecuteRequest{Prompt: "x", StudentName: "Form Name"},
	})
	require.NoError(t, err)
	require.NotNil(t, renderer.lastInfo)
	require.Equal(t, "Form Name", renderer.lastInfo.Name, "form fields win over stored details")
	require.Equal(t, "Stored School", renderer.lastInfo.School)
}

func TestExecuteArchiveFailureIsNotFatal(t *testing.T) {
	repo := &memoryRepo{err: errors.New("db down")}
	svc := newPipeline(&stubGenerator{raw: validRaw}, ExecutionDeps{Repo: repo})

	resp, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "x"}})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ConversationID)
}

func TestExecuteFallbackTierStillCompletes(t *testing.T) {
	svc := newPipeline(&stubGenerator{raw: "The model rambled with no JSON at all."}, ExecutionDeps{})

	resp, err := svc.Execute(context.Background(), ExecutionInput{Request: dto.ExecuteRequest{Prompt: "Define entropy"}})
	require.NoError(t, err)
	require.Equal(t, "fallback", resp.ExtractionTier)

	var result answer.AssignmentResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Equal(t, "Define entropy", result.Question)
	require.Equal(t, "The model rambled with no JSON at all.", result.Answer)
}
