package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/pkg/ai"
)

// ErrHumanizerDisabled indicates no rewriting backend is configured.
var ErrHumanizerDisabled = errors.New("humanizer is not configured")

// Humanizer levels control how aggressively the text is rewritten.
const (
	HumanizeLight  = "light"
	HumanizeMedium = "medium"
	HumanizeHeavy  = "heavy"
)

// HumanizerService rewrites generated answers so they read like a
// student wrote them.
type HumanizerService interface {
	Humanize(ctx context.Context, text, level, studentLevel string) (string, error)
}

type humanizerService struct {
	completer ai.Completer
	logger    zerolog.Logger
}

// NewHumanizerService constructs the humanizer. completer may be nil
// when stealth mode has no backend.
func NewHumanizerService(completer ai.Completer, logger zerolog.Logger) HumanizerService {
	return &humanizerService{
		completer: completer,
		logger:    logger.With().Str("component", "humanizer_service").Logger(),
	}
}

func (s *humanizerService) Humanize(ctx context.Context, text, level, studentLevel string) (string, error) {
	if s.completer == nil {
		return "", ErrHumanizerDisabled
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to humanize")
	}

	rewritten, err := s.completer.Complete(ctx, humanizeSystemPrompt(level, studentLevel), text)
	if err != nil {
		return "", fmt.Errorf("humanize: %w", err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return "", fmt.Errorf("humanizer returned empty text")
	}

	s.logger.Debug().Str("level", normalizeHumanizeLevel(level)).Int("chars", len(rewritten)).Msg("answer humanized")
	return rewritten, nil
}

func humanizeSystemPrompt(level, studentLevel string) string {
	base := "Rewrite the user's text so it reads like it was written by a real student. " +
		"Keep every fact, heading, table and markdown structure intact. " +
		"Reply with the rewritten text only, no preamble."

	switch normalizeHumanizeLevel(level) {
	case HumanizeLight:
		base += " Make only small wording adjustments; vary sentence openers occasionally."
	case HumanizeHeavy:
		base += " Rework sentence structure throughout, vary sentence length a lot, use contractions, " +
			"and allow an occasional informal turn of phrase."
	default:
		base += " Vary sentence length, use contractions, and avoid overly polished transitions."
	}

	switch studentLevel {
	case "Primary", "Secondary", "HighSchool":
		base += " Use simple sentence structures and avoid academic jargon unless it is defined."
	case "Masters", "PhD":
		base += " Keep the vocabulary sophisticated and the register academic."
	}
	if studentLevel != "" {
		base += fmt.Sprintf(" Target writing level: %s.", studentLevel)
	}

	return base
}

func normalizeHumanizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case HumanizeLight:
		return HumanizeLight
	case HumanizeHeavy:
		return HumanizeHeavy
	default:
		return HumanizeMedium
	}
}
