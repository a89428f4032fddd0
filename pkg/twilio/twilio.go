// Package twilio sends WhatsApp messages through the Twilio Messages
// API. Numbers are given bare ("+2376...") and prefixed with the
// whatsapp: channel marker on the wire.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.twilio.com/2010-04-01"
	channelPrefix  = "whatsapp:"
)

var (
	ErrMissingCredentials = errors.New("twilio: account sid and auth token are required")
	ErrMissingRecipient   = errors.New("twilio: recipient number is required")
	ErrMissingContent     = errors.New("twilio: body or media url is required")
)

type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Logger     zerolog.Logger
}

// Message mirrors the fields of the Twilio message resource this
// service cares about.
type Message struct {
	SID          string  `json:"sid"`
	To           string  `json:"to"`
	From         string  `json:"from"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, ErrMissingCredentials
	}
	if strings.TrimSpace(cfg.FromNumber) == "" {
		return nil, errors.New("twilio: from number is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: cfg.Logger.With().Str("component", "twilio").Logger(),
	}, nil
}

// SendWhatsApp posts a message to the recipient over the WhatsApp
// channel. mediaURL may be empty for text-only messages.
func (c *Client) SendWhatsApp(ctx context.Context, to, body, mediaURL string) (*Message, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil, ErrMissingRecipient
	}
	if strings.TrimSpace(body) == "" && strings.TrimSpace(mediaURL) == "" {
		return nil, ErrMissingContent
	}

	form := url.Values{}
	form.Set("To", withChannel(to))
	form.Set("From", withChannel(c.cfg.FromNumber))
	if body != "" {
		form.Set("Body", body)
	}
	if mediaURL != "" {
		form.Add("MediaUrl", mediaURL)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.cfg.BaseURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio: build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("twilio: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("to", to).Msg("whatsapp send rejected")
		return nil, fmt.Errorf("twilio: message create returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("twilio: decode response: %w", err)
	}

	c.logger.Info().Str("sid", msg.SID).Str("status", msg.Status).Msg("whatsapp message queued")
	return &msg, nil
}

// withChannel prefixes a number with whatsapp: exactly once.
func withChannel(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, channelPrefix) {
		return number
	}
	return channelPrefix + number
}
