package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/phishwise/phishwise-api/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ProviderMailer posts messages to a transactional email provider API.
type ProviderMailer struct {
	url    string
	apiKey string
	from   string
	client *http.Client
	logger *zap.Logger
}

// New builds a mailer from config. Without an API key delivery is disabled
// and messages are logged instead of sent.
func New(cfg config.EmailConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKey == "" {
		return &LogMailer{from: cfg.From, logger: logger}
	}
	return &ProviderMailer{
		url:    cfg.ProviderURL,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Send delivers the message via the provider HTTP API.
func (m *ProviderMailer) Send(ctx context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.from
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// LogMailer logs messages instead of delivering them. Used when no provider
// is configured.
type LogMailer struct {
	from   string
	logger *zap.Logger
}

// Send logs the message.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	if msg.From == "" {
		msg.From = m.from
	}
	m.logger.Warn("email provider not configured, message not sent",
		zap.String("to", msg.To),
		zap.String("from", msg.From),
		zap.String("subject", msg.Subject),
	)
	return nil
}
