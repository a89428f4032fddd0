package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/observability"
	"github.com/cheatwell/cheatwell-api/pkg/sendgrid"
	"github.com/cheatwell/cheatwell-api/pkg/twilio"
)

var (
	// ErrEmailDisabled indicates no email provider is configured.
	ErrEmailDisabled = errors.New("email delivery is not configured")
	// ErrWhatsAppDisabled indicates no WhatsApp provider is configured.
	ErrWhatsAppDisabled = errors.New("whatsapp delivery is not configured")
	// ErrDocumentNotFound indicates the named document is not on disk.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrBadFilename indicates the filename escapes the output directory.
	ErrBadFilename = errors.New("invalid document filename")
)

// EmailSender sends one email with optional attachments.
type EmailSender interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

// WhatsAppSender sends one WhatsApp message with optional media.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, body, mediaURL string) (*twilio.Message, error)
}

// MediaHost turns a local document into a publicly reachable URL.
type MediaHost interface {
	UploadFile(ctx context.Context, path string) (string, error)
}

// DeliveryService ships finished documents to students over email and
// WhatsApp.
type DeliveryService interface {
	SendEmail(ctx context.Context, to, subject, body, attachmentPath string) error
	SendWhatsApp(ctx context.Context, to, body, attachmentPath string) error
	ResolveDocument(filename string) (string, error)
}

type deliveryService struct {
	email     EmailSender
	whatsapp  WhatsAppSender
	media     MediaHost
	outputDir string
	logger    zerolog.Logger
}

// NewDeliveryService builds the delivery service. Any provider may be
// nil; the matching channel then reports itself disabled.
func NewDeliveryService(email EmailSender, whatsapp WhatsAppSender, media MediaHost, outputDir string, logger zerolog.Logger) DeliveryService {
	return &deliveryService{
		email:     email,
		whatsapp:  whatsapp,
		media:     media,
		outputDir: outputDir,
		logger:    logger.With().Str("component", "delivery_service").Logger(),
	}
}

func (s *deliveryService) SendEmail(ctx context.Context, to, subject, body, attachmentPath string) error {
	if s.email == nil {
		return ErrEmailDisabled
	}

	if subject == "" {
		subject = "Your completed assignment"
	}
	if body == "" {
		body = "Hi! Your assignment is ready. Please find it attached."
	}

	msg := sendgrid.Message{ToEmail: to, Subject: subject, Text: body}

	if attachmentPath != "" {
		content, err := os.ReadFile(attachmentPath)
		if err != nil {
			observability.DeliveryAttempts().WithLabelValues("email", "error").Inc()
			return fmt.Errorf("read attachment: %w", err)
		}
		msg.Attachments = []sendgrid.Attachment{{
			Filename: filepath.Base(attachmentPath),
			MIMEType: attachmentMIME(attachmentPath),
			Content:  content,
		}}
	}

	if err := s.email.Send(ctx, msg); err != nil {
		observability.DeliveryAttempts().WithLabelValues("email", "error").Inc()
		return err
	}

	observability.DeliveryAttempts().WithLabelValues("email", "sent").Inc()
	s.logger.Info().Str("to", to).Msg("document emailed")
	return nil
}

func (s *deliveryService) SendWhatsApp(ctx context.Context, to, body, attachmentPath string) error {
	if s.whatsapp == nil {
		return ErrWhatsAppDisabled
	}

	if body == "" {
		body = "Hi! Your assignment is ready."
	}

	mediaURL := ""
	if attachmentPath != "" {
		if s.media == nil {
			observability.DeliveryAttempts().WithLabelValues("whatsapp", "error").Inc()
			return fmt.Errorf("whatsapp attachments need a media host")
		}
		url, err := s.media.UploadFile(ctx, attachmentPath)
		if err != nil {
			observability.DeliveryAttempts().WithLabelValues("whatsapp", "error").Inc()
			return fmt.Errorf("host attachment: %w", err)
		}
		mediaURL = url
	}

	if _, err := s.whatsapp.SendWhatsApp(ctx, to, body, mediaURL); err != nil {
		observability.DeliveryAttempts().WithLabelValues("whatsapp", "error").Inc()
		return err
	}

	observability.DeliveryAttempts().WithLabelValues("whatsapp", "sent").Inc()
	s.logger.Info().Str("to", to).Msg("document sent over whatsapp")
	return nil
}

// ResolveDocument maps a bare filename onto the output directory and
// rejects anything that would escape it.
func (s *deliveryService) ResolveDocument(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return "", ErrBadFilename
	}

	path := filepath.Join(s.outputDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrDocumentNotFound
	}
	return path, nil
}

func attachmentMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
