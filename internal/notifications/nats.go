package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"laura-backend/internal/leads"
)

const DefaultLeadSubject = "laura.leads.created"

// LeadEvent is the message published for each stored lead.
type LeadEvent struct {
	Type       string     `json:"type"`
	OccurredAt time.Time  `json:"occurredAt"`
	Lead       leads.Lead `json:"lead"`
}

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = DefaultLeadSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("laura-backend"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) Name() string { return "nats" }

func (p *NATSPublisher) Forward(ctx context.Context, lead leads.Lead) error {
	data, err := encodeLeadEvent(lead, time.Now())
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return err
	}
	return p.conn.FlushWithContext(ctx)
}

// Close drains pending messages before closing the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func encodeLeadEvent(lead leads.Lead, now time.Time) ([]byte, error) {
	return json.Marshal(LeadEvent{
		Type:       "lead.created",
		OccurredAt: now.UTC(),
		Lead:       lead,
	})
}
