// Package email delivers transactional email through an HTTP provider.
package email

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/2014Akamanzi/kiul-app-sub001/internal/config"
	"github.com/2014Akamanzi/kiul-app-sub001/internal/domain"
)

// Mode labels which sender handled a message.
const (
	ModeProvider = "provider"
	ModeConsole  = "console"
)

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, req domain.EmailRequest) (*domain.EmailResult, error)
	Mode() string
}

var (
	_ Sender = (*Client)(nil)
	_ Sender = (*ConsoleSender)(nil)
)

// NewSender returns the provider client when an API key is configured and
// the console sender otherwise.
func NewSender(cfg *config.Config, log zerolog.Logger) Sender {
	if cfg.EmailAPIKey == "" {
		log.Warn().Msg("EMAIL_API_KEY not set, emails will be written to the log")
		return NewConsoleSender(log)
	}
	return NewClient(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom, cfg.EmailTimeout)
}

// Client posts messages to a Resend-compatible API.
type Client struct {
	httpClient *resty.Client
	from       string
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text,omitempty"`
	HTML    string   `json:"html,omitempty"`
}

type providerError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// NewClient creates a provider client.
func NewClient(baseURL, apiKey, from string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("User-Agent", "kiul-site/1.0").
		SetTimeout(timeout)

	return &Client{httpClient: client, from: from}
}

// Mode reports ModeProvider.
func (c *Client) Mode() string { return ModeProvider }

// Send delivers req through the provider.
func (c *Client) Send(ctx context.Context, req domain.EmailRequest) (*domain.EmailResult, error) {
	var (
		result  map[string]any
		failure providerError
	)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sendRequest{
			From:    c.from,
			To:      []string{req.To},
			Subject: req.Subject,
			Text:    req.Text,
			HTML:    req.HTML,
		}).
		SetResult(&result).
		SetError(&failure).
		Post("/emails")
	if err != nil {
		return nil, fmt.Errorf("%w: email provider request failed: %v", domain.ErrProviderFailure, err)
	}

	if resp.IsError() {
		msg := failure.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, fmt.Errorf("%w: email provider error (status %d): %s", domain.ErrProviderFailure, resp.StatusCode(), msg)
	}

	return &domain.EmailResult{Message: "Email sent successfully", Data: result}, nil
}

// ConsoleSender writes messages to the log instead of delivering them.
type ConsoleSender struct {
	log zerolog.Logger
}

// NewConsoleSender creates a ConsoleSender.
func NewConsoleSender(log zerolog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

// Mode reports ModeConsole.
func (s *ConsoleSender) Mode() string { return ModeConsole }

// Send logs req and reports success.
func (s *ConsoleSender) Send(_ context.Context, req domain.EmailRequest) (*domain.EmailResult, error) {
	s.log.Info().
		Str("to", req.To).
		Str("subject", req.Subject).
		Str("text", req.Text).
		Str("html", req.HTML).
		Msg("email provider not configured, message logged instead of sent")
	return &domain.EmailResult{Message: "Email logged (no provider configured)"}, nil
}
