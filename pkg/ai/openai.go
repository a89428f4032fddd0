package ai

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cheatwell",
		Subsystem: "ai",
		Name:      "generation_duration_seconds",
		Help:      "Duration of assignment generation requests",
	}, []string{"model"})

	generationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cheatwell",
		Subsystem: "ai",
		Name:      "generation_failures_total",
		Help:      "Number of failed assignment generation requests",
	}, []string{"model"})
)

// ClientConfig defines configuration for an OpenAI-compatible chat endpoint.
// Gemini's compatibility endpoint, Groq, and OpenAI itself are all reachable
// by choosing BaseURL and Model.
type ClientConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	// TranscribeModel is the speech-to-text model used for voice
	// notes. Defaults to whisper-1.
	TranscribeModel string
	Logger          zerolog.Logger
}

// Client implements Generator against an OpenAI-compatible chat API.
type Client struct {
	client *openai.Client
	cfg    ClientConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewClient builds a generation client from the provided configuration.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generation api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	if cfg.TranscribeModel == "" {
		cfg.TranscribeModel = openai.Whisper1
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/cheatwell/cheatwell-api/pkg/ai"),
		logger: logger,
	}, nil
}

// Generate sends the assembled prompt to the model and returns the raw text
// of the first choice. Voice notes are transcribed first and the transcript
// joins the prompt; the chat completions surface itself only carries text
// and image parts.
func (c *Client) Generate(parent context.Context, input GenerationInput) (string, error) {
	ctx, span := c.tracer.Start(parent, "ai.generate", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	transcript := ""
	if input.Audio != nil {
		text, err := c.transcribe(ctx, input.Audio)
		if err != nil {
			generationFailures.WithLabelValues(c.cfg.Model).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}
		transcript = text
	}

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: assignmentSystemPrompt(),
			},
			userMessage(input, transcript),
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from model")
		generationFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return resp.Choices[0].Message.Content, nil
}

// Complete runs a free-form chat completion with a caller-supplied
// system prompt. Humanizing and fact-checking use this path because
// they do not want the structured assignment response shape.
func (c *Client) Complete(parent context.Context, system, user string) (string, error) {
	ctx, span := c.tracer.Start(parent, "ai.complete", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, request)
	generationDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		generationFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("complete: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from model")
		generationFailures.WithLabelValues(c.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return resp.Choices[0].Message.Content, nil
}

func assignmentSystemPrompt() string {
	return "You are an expert academic assistant. Solve the student's assignment completely. " +
		"Respond with a single JSON object with the string fields id, title, question, answer, " +
		"summary, note and more. Put the full deliverable (essay, code, or calculation) in " +
		"answer using markdown headings, tables and **bold** where helpful."
}

// transcribe runs a voice note through the speech-to-text endpoint.
func (c *Client) transcribe(ctx context.Context, audio *AudioInput) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.TranscribeModel,
		FilePath: audioFileName(audio.MIMEType),
		Reader:   bytes.NewReader(audio.Data),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("transcription returned no text")
	}
	return text, nil
}

func userMessage(input GenerationInput, voiceTranscript string) openai.ChatCompletionMessage {
	text := buildPrompt(input, voiceTranscript)

	if input.ImageDataURL == "" {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		}
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: text},
		{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: input.ImageDataURL},
		},
	}

	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}

func buildPrompt(input GenerationInput, voiceTranscript string) string {
	builder := strings.Builder{}

	if input.ResearchContext != "" {
		builder.WriteString("Research Context:\n")
		builder.WriteString(input.ResearchContext)
		builder.WriteString("\n\n")
	}

	if input.FileContent != "" {
		builder.WriteString("Assignment Content:\n")
		builder.WriteString(input.FileContent)
		builder.WriteString("\n\n")
	}

	if voiceTranscript != "" {
		builder.WriteString("Voice Note Transcript:\n")
		builder.WriteString(voiceTranscript)
		builder.WriteString("\n\n")
	}

	if input.StudentLevel != "" {
		builder.WriteString("Student Level: ")
		builder.WriteString(input.StudentLevel)
		builder.WriteString("\n")
	}

	if input.Department != "" {
		builder.WriteString("Department: ")
		builder.WriteString(input.Department)
		builder.WriteString("\n")
	}

	if input.StyleInstruction != "" {
		builder.WriteString("Writing Style: ")
		builder.WriteString(input.StyleInstruction)
		builder.WriteString("\n")
	}

	builder.WriteString("User Instructions:\n")
	if input.Prompt != "" {
		builder.WriteString(input.Prompt)
	} else {
		builder.WriteString("Please review the attached material and help with the assignment.")
	}

	return builder.String()
}

// audioFileName names the uploaded voice note so the transcription
// endpoint can infer its container from the extension.
func audioFileName(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "voice.wav"
	case "audio/ogg":
		return "voice.ogg"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return "voice.m4a"
	case "audio/webm":
		return "voice.webm"
	case "audio/flac", "audio/x-flac":
		return "voice.flac"
	default:
		return "voice.mp3"
	}
}
