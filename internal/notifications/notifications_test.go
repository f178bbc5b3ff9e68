package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"laura-backend/internal/contact"
	"laura-backend/internal/leads"
	"laura-backend/internal/pricing"
	"laura-backend/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLead() leads.Lead {
	return leads.Lead{
		ID:             "DEM-LZ1-AB12",
		CreatedAt:      time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Status:         leads.StatusNew,
		Name:           "Mme Martin",
		Phone:          "06 12 34 56 78",
		City:           "Lyon",
		Message:        "Code <12B>",
		Service:        pricing.ServiceShortTermRental,
		ServiceLabel:   "Airbnb & Gîtes",
		Frequency:      pricing.FrequencyOnce,
		FrequencyLabel: "Ponctuel",
		Hours:          3,
		PriceEstimate:  49.5,
		Details: wizard.Details{
			Rental: &wizard.RentalDetails{ResidenceType: pricing.ResidenceSecondary, KeyAccess: "keybox", LinenOption: "full"},
		},
	}
}

type brevoCapture struct {
	server  *httptest.Server
	payload brevoSendRequest
	apiKey  string
}

func newBrevoCapture(t *testing.T, status int) *brevoCapture {
	t.Helper()
	c := &brevoCapture{}
	c.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.apiKey = r.Header.Get("api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c.payload))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"messageId":"<msg-1@brevo>"}`))
	}))
	t.Cleanup(c.server.Close)
	return c
}

func (c *brevoCapture) client() *BrevoClient {
	b := NewBrevoClient("key-123", "site@laura.fr", "", true)
	b.endpoint = c.server.URL
	return b
}

func TestNewBrevoClientRequiresKeyAndSender(t *testing.T) {
	assert.Nil(t, NewBrevoClient("", "site@laura.fr", "", false))
	assert.Nil(t, NewBrevoClient("key", " ", "", false))
	assert.Nil(t, NewLeadMailer(nil, "owner@laura.fr"))
}

func TestLeadMailerForward(t *testing.T) {
	capture := newBrevoCapture(t, http.StatusCreated)
	m := NewLeadMailer(capture.client(), "owner@laura.fr")

	require.NoError(t, m.Forward(context.Background(), sampleLead()))
	assert.Equal(t, "key-123", capture.apiKey)
	assert.Equal(t, "owner@laura.fr", capture.payload.To[0].Email)
	assert.Equal(t, "site@laura.fr", capture.payload.Sender.Name)
	assert.Equal(t, "drop", capture.payload.Headers["X-Sib-Sandbox"])
	assert.Equal(t, "Nouvelle demande - Airbnb & Gîtes - Mme Martin", capture.payload.Subject)
	assert.Contains(t, capture.payload.HTMLContent, "Code &lt;12B&gt;")
	assert.Contains(t, capture.payload.HTMLContent, "secondary")
	assert.Contains(t, capture.payload.HTMLContent, "49.50 €")
	assert.Equal(t, leadSummary(sampleLead()), capture.payload.TextContent)
	assert.Equal(t, []string{"lead", "short-term-rental"}, capture.payload.Tags)
	assert.Nil(t, capture.payload.ReplyTo)
}

func TestLeadMailerForwardNon2xx(t *testing.T) {
	capture := newBrevoCapture(t, http.StatusBadRequest)
	m := NewLeadMailer(capture.client(), "owner@laura.fr")
	err := m.Forward(context.Background(), sampleLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
}

func TestContactMailer(t *testing.T) {
	capture := newBrevoCapture(t, http.StatusCreated)
	m := NewContactMailer(capture.client(), "owner@laura.fr")
	err := m.NotifyContact(context.Background(), contact.Submission{Name: "M. Durand", Email: "durand@example.fr", Area: "Lille", Message: "Bonjour"})
	require.NoError(t, err)
	assert.Equal(t, "Contact - M. Durand (Lille)", capture.payload.Subject)
	require.NotNil(t, capture.payload.ReplyTo)
	assert.Equal(t, "durand@example.fr", capture.payload.ReplyTo.Email)
	assert.Equal(t, []string{"contact"}, capture.payload.Tags)
}

func TestLeadSummary(t *testing.T) {
	text := leadSummary(sampleLead())
	lines := strings.Split(text, "\n")
	assert.Equal(t, "Nouvelle demande DEM-LZ1-AB12", lines[0])
	assert.Equal(t, "Airbnb & Gîtes · Ponctuel · 3h", lines[1])
	assert.Contains(t, text, "Tel: 06 12 34 56 78")
	assert.Contains(t, text, "Estimation: 49.50 €")
	assert.True(t, strings.HasSuffix(text, "« Code <12B> »"))
}

func TestTelegramNotifierAgainstFakeAPI(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"laura","username":"laura_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			sent = append(sent, r.Form.Get("text"))
			assert.Equal(t, "-100", r.Form.Get("chat_id"))
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":-100,"type":"group"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	n, err := NewTelegramNotifier("TOKEN", -100, srv.URL+"/bot%s/%s")
	require.NoError(t, err)
	assert.Equal(t, "telegram", n.Name())
	require.NoError(t, n.Forward(context.Background(), sampleLead()))
	require.Len(t, sent, 1)
	assert.True(t, strings.HasPrefix(sent[0], "Nouvelle demande DEM-LZ1-AB12"))
}

func TestEncodeLeadEvent(t *testing.T) {
	now := time.Date(2024, 3, 5, 11, 0, 0, 0, time.FixedZone("CET", 3600))
	raw, err := encodeLeadEvent(sampleLead(), now)
	require.NoError(t, err)

	var ev LeadEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, "lead.created", ev.Type)
	assert.Equal(t, "DEM-LZ1-AB12", ev.Lead.ID)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
}
