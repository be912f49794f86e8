package brevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/techcreator/otp-service/internal/config"
)

const defaultEndpoint = "https://api.brevo.com/v3/smtp/email"

// Sender dispatches transactional email through the Brevo v3 API.
type Sender struct {
	apiKey      string
	senderName  string
	senderEmail string
	endpoint    string
	httpClient  *http.Client
}

type recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailPayload struct {
	Sender      recipient   `json:"sender"`
	To          []recipient `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
	Tags        []string    `json:"tags,omitempty"`
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		apiKey:      cfg.BrevoAPIKey,
		senderName:  cfg.BrevoSenderName,
		senderEmail: cfg.BrevoSenderEmail,
		endpoint:    defaultEndpoint,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// WithEndpoint overrides the API endpoint. Used by tests to point the
// sender at a local server.
func (s *Sender) WithEndpoint(url string) *Sender {
	s.endpoint = url
	return s
}

func (s *Sender) Send(ctx context.Context, to, subject, html string, tags []string) error {
	payload := emailPayload{
		Sender:      recipient{Name: s.senderName, Email: s.senderEmail},
		To:          []recipient{{Email: to, Name: "User"}},
		Subject:     subject,
		HTMLContent: html,
		Tags:        tags,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// Brevo returns a JSON error document; keep a bounded slice of it.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("brevo responded %d: %s", resp.StatusCode, msg)
	}
	return nil
}
