// Package crm pushes new leads to an external CRM webhook.
package crm

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

	"laura-backend/internal/leads"
)

const Source = "Site web Laura"

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

type Deal struct {
	Title  string  `json:"title"`
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

type LeadDetails struct {
	Service   string  `json:"service"`
	Frequency string  `json:"frequency"`
	Hours     float64 `json:"hours"`
	Message   string  `json:"message"`
}

type Metadata struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type Payload struct {
	Contact  Contact     `json:"contact"`
	Deal     Deal        `json:"deal"`
	Details  LeadDetails `json:"details"`
	Metadata Metadata    `json:"metadata"`
}

func NewPayload(l leads.Lead) Payload {
	who := strings.TrimSpace(l.Name)
	if who == "" {
		who = l.Phone
	}
	return Payload{
		Contact: Contact{Name: l.Name, Phone: l.Phone, City: l.City},
		Deal: Deal{
			Title:  l.ServiceLabel + " - " + who,
			Value:  l.PriceEstimate,
			Source: Source,
		},
		Details: LeadDetails{
			Service:   l.ServiceLabel,
			Frequency: l.FrequencyLabel,
			Hours:     l.Hours,
			Message:   l.Message,
		},
		Metadata: Metadata{ID: l.ID, CreatedAt: l.CreatedAt},
	}
}

type Client struct {
	WebhookURL string
	APIKey     string
	HTTPClient *http.Client
}

func NewClient(webhookURL, apiKey string) *Client {
	return &Client{
		WebhookURL: webhookURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Name() string { return "crm" }

// Forward posts the lead as JSON. Any non-2xx answer is an error.
func (c *Client) Forward(ctx context.Context, lead leads.Lead) error {
	if c == nil || strings.TrimSpace(c.WebhookURL) == "" {
		return errors.New("crm webhook url is not set")
	}

	body, err := json.Marshal(NewPayload(lead))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("crm non-2xx: %d: %s", resp.StatusCode, string(msg))
	}
	return nil
}
