package notifications

//go:generate go run go.uber.org/mock/mockgen -source=email_service.go -destination=../mocks/mock_mailer.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Mailer delivers one transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error
}

type BrevoMailer struct {
	apiKey      string
	senderEmail string
	senderName  string
	endpoint    string
	client      *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewMailer returns a Brevo-backed Mailer, or a no-op one when any of the
// credentials is missing.
func NewMailer(apiKey, senderEmail, senderName string, log zerolog.Logger) Mailer {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Warn().Msg("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return NopMailer{log: log}
	}
	log.Info().Str("sender", senderEmail).Msg("✅ Email service initialized successfully.")
	return &BrevoMailer{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		endpoint:    brevoEndpoint,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoMailer) Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error {
	at := strings.Index(toEmail, "@")
	if at <= 0 {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}
	if toName == "" {
		toName = toEmail[:at]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.senderName, "email": s.senderEmail},
		To:          []map[string]string{{"email": toEmail, "name": toName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// NopMailer drops every e-mail.
type NopMailer struct {
	log zerolog.Logger
}

func (m NopMailer) Send(_ context.Context, _, toEmail, subject, _ string) error {
	m.log.Debug().Str("to", toEmail).Str("subject", subject).Msg("Email client not initialized, skipping email send.")
	return nil
}

// SendAsync delivers in the background and only logs the outcome.
func SendAsync(m Mailer, log zerolog.Logger, toName, toEmail, subject, htmlContent string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := m.Send(ctx, toName, toEmail, subject, htmlContent); err != nil {
			log.Error().Err(err).Str("to", toEmail).Msg("🔥 Failed to send email")
			return
		}
		log.Info().Str("to", toEmail).Msg("✅ Email sent successfully")
	}()
}
