package ai

import "context"

// AudioInput is a voice note. It is transcribed before generation and
// the transcript joins the prompt.
type AudioInput struct {
	Data     []byte
	MIMEType string
}

// GenerationInput carries everything the model needs to work an assignment.
type GenerationInput struct {
	Prompt           string
	FileContent      string
	ResearchContext  string
	ImageDataURL     string
	Audio            *AudioInput
	StudentLevel     string
	Department       string
	StyleInstruction string
}

// Generator produces raw model text for an assignment request. The output is
// expected, but not guaranteed, to contain a JSON record; recovering a
// structured result from malformed output is the caller's concern.
type Generator interface {
	Generate(ctx context.Context, input GenerationInput) (string, error)
}

// Completer runs a free-form chat completion under a caller-supplied
// system prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
