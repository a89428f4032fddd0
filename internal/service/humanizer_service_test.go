package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	lastSystem string
	lastUser   string
	reply      string
	err        error
}

func (s *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	s.lastSystem = system
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestHumanizeRewritesText(t *testing.T) {
	completer := &stubCompleter{reply: "  I reckon entropy always increases.  "}
	svc := NewHumanizerService(completer, zerolog.Nop())

	out, err := svc.Humanize(context.Background(), "Entropy always increases.", HumanizeMedium, "University")
	require.NoError(t, err)
	require.Equal(t, "I reckon entropy always increases.", out)
	require.Equal(t, "Entropy always increases.", completer.lastUser)
	require.Contains(t, completer.lastSystem, "real student")
}

func TestHumanizeLevelChangesInstruction(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	svc := NewHumanizerService(completer, zerolog.Nop())

	_, err := svc.Humanize(context.Background(), "text", HumanizeLight, "")
	require.NoError(t, err)
	light := completer.lastSystem

	_, err = svc.Humanize(context.Background(), "text", HumanizeHeavy, "")
	require.NoError(t, err)
	heavy := completer.lastSystem

	require.NotEqual(t, light, heavy)
	require.Contains(t, heavy, "Rework sentence structure")

	// Unknown levels fall back to medium.
	_, err = svc.Humanize(context.Background(), "text", "extreme", "")
	require.NoError(t, err)
	_, err = svc.Humanize(context.Background(), "text", HumanizeMedium, "")
	require.NoError(t, err)
}

func TestHumanizeCarriesStudentLevel(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	svc := NewHumanizerService(completer, zerolog.Nop())

	_, err := svc.Humanize(context.Background(), "text", HumanizeMedium, "HighSchool")
	require.NoError(t, err)
	require.Contains(t, completer.lastSystem, "simple sentence structures")
	require.Contains(t, completer.lastSystem, "HighSchool")

	_, err = svc.Humanize(context.Background(), "text", HumanizeMedium, "PhD")
	require.NoError(t, err)
	require.Contains(t, completer.lastSystem, "sophisticated")
}

func TestHumanizeWithoutBackend(t *testing.T) {
	svc := NewHumanizerService(nil, zerolog.Nop())

	_, err := svc.Humanize(context.Background(), "text", HumanizeMedium, "")
	require.ErrorIs(t, err, ErrHumanizerDisabled)
}

func TestHumanizePropagatesFailuresAndEmptyReplies(t *testing.T) {
	svc := NewHumanizerService(&stubCompleter{err: errors.New("rate limited")}, zerolog.Nop())
	_, err := svc.Humanize(context.Background(), "text", HumanizeMedium, "")
	require.Error(t, err)

	svc = NewHumanizerService(&stubCompleter{reply: "   "}, zerolog.Nop())
	_, err = svc.Humanize(context.Background(), "text", HumanizeMedium, "")
	require.Error(t, err)

	svc = NewHumanizerService(&stubCompleter{reply: "ok"}, zerolog.Nop())
	_, err = svc.Humanize(context.Background(), "   ", HumanizeMedium, "")
	require.Error(t, err)
}
