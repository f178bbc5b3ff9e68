package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoClient sends transactional mail through the Brevo SMTP API.
type BrevoClient struct {
	apiKey     string
	sender     brevoContact
	sandbox    bool
	endpoint   string
	httpClient *http.Client
}

// NewBrevoClient returns nil when the key or sender is missing so callers
// can treat email as not configured.
func NewBrevoClient(apiKey, senderEmail, senderName string, sandbox bool) *BrevoClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(senderEmail) == "" {
		return nil
	}
	if strings.TrimSpace(senderName) == "" {
		senderName = senderEmail
	}
	return &BrevoClient{
		apiKey:     apiKey,
		sender:     brevoContact{Name: senderName, Email: senderEmail},
		sandbox:    sandbox,
		endpoint:   defaultBrevoEndpoint,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

// email is one outgoing message. ReplyTo lets the owner answer a visitor
// straight from the notification.
type email struct {
	To      string
	Subject string
	HTML    string
	Text    string
	ReplyTo *brevoContact
	Tags    []string
}

func (c *BrevoClient) send(ctx context.Context, m email) (string, error) {
	switch {
	case c == nil:
		return "", errors.New("brevo client is nil")
	case strings.TrimSpace(m.To) == "":
		return "", errors.New("missing recipient email")
	case strings.TrimSpace(m.Subject) == "":
		return "", errors.New("missing subject")
	case strings.TrimSpace(m.HTML) == "":
		return "", errors.New("missing html body")
	}

	payload := brevoSendRequest{
		Sender:      c.sender,
		To:          []brevoContact{{Email: m.To}},
		ReplyTo:     m.ReplyTo,
		Subject:     m.Subject,
		HTMLContent: m.HTML,
		TextContent: m.Text,
		Tags:        m.Tags,
	}
	if c.sandbox {
		payload.Headers = map[string]string{"X-Sib-Sandbox": "drop"}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("brevo marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("brevo create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("brevo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("brevo send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("brevo decode response: %w", err)
	}
	if out.MessageID == "" {
		return "", errors.New("brevo response missing messageId")
	}
	return out.MessageID, nil
}

type brevoSendRequest struct {
	Sender      brevoContact      `json:"sender"`
	To          []brevoContact    `json:"to"`
	ReplyTo     *brevoContact     `json:"replyTo,omitempty"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	TextContent string            `json:"textContent,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}
