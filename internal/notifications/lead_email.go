package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"

	"laura-backend/internal/leads"
)

const leadNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>Nouvelle demande {{.ServiceLabel}}</h3>
  <p><strong>Nom:</strong> {{.Name}}</p>
  <p><strong>Telephone:</strong> {{.Phone}}</p>
  <p><strong>Ville:</strong> {{.City}}</p>
  <p><strong>Frequence:</strong> {{.FrequencyLabel}}</p>
  <p><strong>Heures:</strong> {{hours .Hours}}</p>
  <p><strong>Prix estime:</strong> {{price .PriceEstimate}}</p>
  {{- with .Details.Rental}}
  <p><strong>Residence:</strong> {{.ResidenceType}} / cles: {{.KeyAccess}} / linge: {{.LinenOption}}</p>
  {{- end}}
  {{- with .Details.Pro}}
  <p><strong>Societe:</strong> {{.CompanyName}} {{.Siret}} ({{.LocalType}}, {{.PreferredSchedule}})</p>
  {{- end}}
  {{- with .Details.Seniors}}
  <p><strong>Proche aidant:</strong> {{.CarerName}} {{.CarerPhone}}</p>
  {{- end}}
  <p><strong>ID:</strong> {{.ID}}</p>
  <p><strong>Message:</strong><br/>{{.Message}}</p>
</body>
</html>`

var leadNotificationTmpl = template.Must(template.New("lead_notification").Funcs(template.FuncMap{
	"hours": func(v float64) string {
		if v <= 0 {
			return "-"
		}
		return strconv.FormatFloat(v, 'f', -1, 64) + " h"
	},
	"price": func(v float64) string {
		if v <= 0 {
			return "-"
		}
		return fmt.Sprintf("%.2f €", v)
	},
}).Parse(leadNotificationTemplate))

func buildLeadNotificationHTML(lead leads.Lead) (string, error) {
	var buf bytes.Buffer
	if err := leadNotificationTmpl.Execute(&buf, lead); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// LeadMailer emails every new lead to the back office inbox.
type LeadMailer struct {
	client *BrevoClient
	to     string
}

func NewLeadMailer(client *BrevoClient, to string) *LeadMailer {
	if client == nil || to == "" {
		return nil
	}
	return &LeadMailer{client: client, to: to}
}

func (m *LeadMailer) Name() string { return "email" }

func (m *LeadMailer) Forward(ctx context.Context, lead leads.Lead) error {
	html, err := buildLeadNotificationHTML(lead)
	if err != nil {
		return err
	}
	who := lead.Name
	if who == "" {
		who = lead.Phone
	}
	_, err = m.client.send(ctx, email{
		To:      m.to,
		Subject: fmt.Sprintf("Nouvelle demande - %s - %s", lead.ServiceLabel, who),
		HTML:    html,
		Text:    leadSummary(lead),
		Tags:    []string{"lead", string(lead.Service)},
	})
	return err
}
