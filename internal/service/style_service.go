package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/pkg/ai"
)

// neutralStyle is used when no sample is available or analysis fails.
const neutralStyle = "Write in a clear, plain academic voice appropriate for the student's level."

// maxStyleSample bounds how much of the submission is sent for
// analysis.
const maxStyleSample = 4000

// StyleService derives a writing-style instruction from the student's
// own submitted text so generated answers blend in.
type StyleService interface {
	Mirror(ctx context.Context, sample string) string
}

type styleService struct {
	completer ai.Completer
	logger    zerolog.Logger
}

// NewStyleService constructs the style analyzer. completer may be nil.
func NewStyleService(completer ai.Completer, logger zerolog.Logger) StyleService {
	return &styleService{
		completer: completer,
		logger:    logger.With().Str("component", "style_service").Logger(),
	}
}

// Mirror never fails: any analysis problem degrades to the neutral
// instruction so the pipeline keeps moving.
func (s *styleService) Mirror(ctx context.Context, sample string) string {
	sample = strings.TrimSpace(sample)
	if sample == "" || s.completer == nil {
		return neutralStyle
	}

	if len(sample) > maxStyleSample {
		sample = sample[:maxStyleSample]
	}

	system := "You analyze writing style. Given a student's text, describe their voice in one short " +
		"instruction a writer could follow: typical sentence length, vocabulary level, tone, and quirks. " +
		"Reply with the instruction only."

	instruction, err := s.completer.Complete(ctx, system, sample)
	if err != nil {
		s.logger.Warn().Err(err).Msg("style analysis failed, using neutral voice")
		return neutralStyle
	}

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return neutralStyle
	}
	return instruction
}
