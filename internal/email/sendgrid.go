package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sendGridURL = "https://api.sendgrid.com/v3/mail/send"

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Endpoint overrides the API URL, for tests.
	Endpoint string
}

// SendGrid sends mail through the v3 mail/send API.
type SendGrid struct {
	client *http.Client
	config SendGridConfig
}

func NewSendGrid(cfg SendGridConfig) *SendGrid {
	if cfg.Endpoint == "" {
		cfg.Endpoint = sendGridURL
	}
	return &SendGrid{
		client: &http.Client{
			Transport: &bearerTransport{token: cfg.APIKey, base: http.DefaultTransport},
			Timeout:   10 * time.Second,
		},
		config: cfg,
	}
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("Content-Type", "application/json")
	return t.base.RoundTrip(req)
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (s *SendGrid) SendMail(ctx context.Context, mail Mail) error {
	payload := sgRequest{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: mail.To}}}},
		From:             sgAddress{Email: s.config.FromEmail, Name: s.config.FromName},
		Subject:          mail.Subject,
	}
	// text/plain must precede text/html.
	if mail.PlainText != "" {
		payload.Content = append(payload.Content, sgContent{Type: "text/plain", Value: mail.PlainText})
	}
	payload.Content = append(payload.Content, sgContent{Type: "text/html", Value: string(mail.Body)})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mail: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
