// Package sendgrid delivers completed assignments over email through
// the SendGrid v3 mail send API.
package sendgrid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.sendgrid.com"

var (
	ErrMissingAPIKey    = errors.New("sendgrid: api key is required")
	ErrMissingRecipient = errors.New("sendgrid: recipient email is required")
	ErrMissingContent   = errors.New("sendgrid: subject and body are required")
)

type Config struct {
	APIKey    string
	BaseURL   string
	FromEmail string
	FromName  string
	Logger    zerolog.Logger
}

// Attachment is a file to ship alongside the message body.
type Attachment struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Message is a single outbound email.
type Message struct {
	ToEmail     string
	ToName      string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.FromEmail) == "" {
		return nil, errors.New("sendgrid: from email is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: cfg.Logger.With().Str("component", "sendgrid").Logger(),
	}, nil
}

// --- SendGrid mail send wire types ---

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type wireAttachment struct {
	Content     string `json:"content"`
	Type        string `json:"type,omitempty"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition,omitempty"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
	Attachments      []wireAttachment  `json:"attachments,omitempty"`
}

// Send posts the message to /v3/mail/send. SendGrid answers 202 on
// acceptance; any other status is returned as an error.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return ErrMissingRecipient
	}
	if strings.TrimSpace(msg.Subject) == "" || (strings.TrimSpace(msg.Text) == "" && strings.TrimSpace(msg.HTML) == "") {
		return ErrMissingContent
	}

	contents := make([]mailContent, 0, 2)
	if t := strings.TrimSpace(msg.Text); t != "" {
		contents = append(contents, mailContent{Type: "text/plain", Value: t})
	}
	if h := strings.TrimSpace(msg.HTML); h != "" {
		contents = append(contents, mailContent{Type: "text/html", Value: h})
	}

	attachments := make([]wireAttachment, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		if a.Filename == "" || len(a.Content) == 0 {
			return fmt.Errorf("sendgrid: attachment %q missing filename or content", a.Filename)
		}
		attachments = append(attachments, wireAttachment{
			Content:     base64.StdEncoding.EncodeToString(a.Content),
			Type:        a.MIMEType,
			Filename:    a.Filename,
			Disposition: "attachment",
		})
	}

	wire := mailSendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.ToEmail, Name: msg.ToName}}}},
		From:             emailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		Subject:          msg.Subject,
		Content:          contents,
		Attachments:      attachments,
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("sendgrid: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sendgrid: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().Int("status", resp.StatusCode).Str("to", msg.ToEmail).Msg("mail send rejected")
		return fmt.Errorf("sendgrid: mail send returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	c.logger.Info().Str("to", msg.ToEmail).Int("attachments", len(msg.Attachments)).Msg("mail accepted")
	return nil
}
