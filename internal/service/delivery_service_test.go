package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cheatwell/cheatwell-api/pkg/sendgrid"
	"github.com/cheatwell/cheatwell-api/pkg/twilio"
)

type stubEmailSender struct {
	last sendgrid.Message
	err  error
}

func (s *stubEmailSender) Send(_ context.Context, msg sendgrid.Message) error {
	s.last = msg
	return s.err
}

type stubWhatsAppSender struct {
	lastTo    string
	lastBody  string
	lastMedia string
	err       error
}

func (s *stubWhatsAppSender) SendWhatsApp(_ context.Context, to, body, mediaURL string) (*twilio.Message, error) {
	s.lastTo, s.lastBody, s.lastMedia = to, body, mediaURL
	if s.err != nil {
		return nil, s.err
	}
	return &twilio.Message{SID: "SM1", Status: "queued"}, nil
}

type stubMediaHost struct {
	lastPath string
	err      error
}

func (s *stubMediaHost) UploadFile(_ context.Context, path string) (string, error) {
	s.lastPath = path
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/doc.pdf", nil
}

func writeTestDocument(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func TestSendEmailAttachesDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDocument(t, dir, "assignment_x.pdf")

	email := &stubEmailSender{}
	svc := NewDeliveryService(email, nil, nil, dir, zerolog.Nop())

	require.NoError(t, svc.SendEmail(context.Background(), "student@example.com", "", "", path))
	require.Equal(t, "student@example.com", email.last.ToEmail)
	require.Equal(t, "Your completed assignment", email.last.Subject)
	require.Len(t, email.last.Attachments, 1)
	require.Equal(t, "assignment_x.pdf", email.last.Attachments[0].Filename)
	require.Equal(t, "application/pdf", email.last.Attachments[0].MIMEType)
}

func TestSendEmailDisabledAndFailing(t *testing.T) {
	svc := NewDeliveryService(nil, nil, nil, t.TempDir(), zerolog.Nop())
	require.ErrorIs(t, svc.SendEmail(context.Background(), "a@b.c", "", "", ""), ErrEmailDisabled)

	svc = NewDeliveryService(&stubEmailSender{err: errors.New("rejected")}, nil, nil, t.TempDir(), zerolog.Nop())
	require.Error(t, svc.SendEmail(context.Background(), "a@b.c", "s", "b", ""))
}

func TestSendWhatsAppHostsAttachment(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDocument(t, dir, "assignment_y.pdf")

	whatsapp := &stubWhatsAppSender{}
	media := &stubMediaHost{}
	svc := NewDeliveryService(nil, whatsapp, media, dir, zerolog.Nop())

	require.NoError(t, svc.SendWhatsApp(context.Background(), "+237650000000", "", path))
	require.Equal(t, path, media.lastPath)
	require.Equal(t, "https://cdn.example.com/doc.pdf", whatsapp.lastMedia)
	require.Equal(t, "+237650000000", whatsapp.lastTo)
	require.NotEmpty(t, whatsapp.lastBody)
}

func TestSendWhatsAppWithoutMediaHost(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDocument(t, dir, "assignment_z.pdf")

	svc := NewDeliveryService(nil, &stubWhatsAppSender{}, nil, dir, zerolog.Nop())
	require.Error(t, svc.SendWhatsApp(context.Background(), "+237650000000", "", path))

	// Text-only messages still go through.
	require.NoError(t, svc.SendWhatsApp(context.Background(), "+237650000000", "done!", ""))
}

func TestSendWhatsAppDisabled(t *testing.T) {
	svc := NewDeliveryService(nil, nil, nil, t.TempDir(), zerolog.Nop())
	require.ErrorIs(t, svc.SendWhatsApp(context.Background(), "+237650000000", "hi", ""), ErrWhatsAppDisabled)
}

func TestResolveDocumentGuardsTraversal(t *testing.T) {
	dir := t.TempDir()
	writeTestDocument(t, dir, "assignment_ok.pdf")

	svc := NewDeliveryService(nil, nil, nil, dir, zerolog.Nop())

	path, err := svc.ResolveDocument("assignment_ok.pdf")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "assignment_ok.pdf"), path)

	_, err = svc.ResolveDocument("../etc/passwd")
	require.ErrorIs(t, err, ErrBadFilename)

	_, err = svc.ResolveDocument("sub/assignment_ok.pdf")
	require.ErrorIs(t, err, ErrBadFilename)

	_, err = svc.ResolveDocument("")
	require.ErrorIs(t, err, ErrBadFilename)

	_, err = svc.ResolveDocument("missing.pdf")
	require.ErrorIs(t, err, ErrDocumentNotFound)
}
