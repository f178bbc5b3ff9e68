package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"laura-backend/internal/contact"
)

const contactNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>Nouveau message de contact</h3>
  <p><strong>Nom:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Telephone:</strong> {{.Phone}}</p>
  <p><strong>Zone:</strong> {{.Area}}</p>
  <p><strong>Message:</strong><br/>{{.Message}}</p>
</body>
</html>`

var contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(contactNotificationTemplate))

type ContactMailer struct {
	client *BrevoClient
	to     string
}

func NewContactMailer(client *BrevoClient, to string) *ContactMailer {
	if client == nil || to == "" {
		return nil
	}
	return &ContactMailer{client: client, to: to}
}

func (m *ContactMailer) NotifyContact(ctx context.Context, sub contact.Submission) error {
	var buf bytes.Buffer
	if err := contactNotificationTmpl.Execute(&buf, sub); err != nil {
		return err
	}
	msg := email{
		To:      m.to,
		Subject: fmt.Sprintf("Contact - %s (%s)", sub.Name, sub.Area),
		HTML:    buf.String(),
		Tags:    []string{"contact"},
	}
	if sub.Email != "" {
		msg.ReplyTo = &brevoContact{Name: sub.Name, Email: sub.Email}
	}
	_, err := m.client.send(ctx, msg)
	return err
}
