package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"laura-backend/internal/leads"
	"laura-backend/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLead() leads.Lead {
	return leads.Lead{
		ID:             "DEM-LX2A9B-K3F0",
		CreatedAt:      time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
		Status:         leads.StatusNew,
		Phone:          "06 12 34 56 78",
		City:           "Lyon",
		Message:        "Digicode 12B",
		Service:        pricing.ServiceRegular,
		ServiceLabel:   "Ménage régulier",
		Frequency:      pricing.FrequencyWeekly,
		FrequencyLabel: "Hebdomadaire",
		Hours:          2.5,
		PriceEstimate:  97.5,
	}
}

func TestNewPayloadFallsBackToPhone(t *testing.T) {
	p := NewPayload(sampleLead())
	assert.Equal(t, "Ménage régulier - 06 12 34 56 78", p.Deal.Title)
	assert.Equal(t, Source, p.Deal.Source)
	assert.Equal(t, 97.5, p.Deal.Value)
	assert.Equal(t, "Hebdomadaire", p.Details.Frequency)
	assert.Equal(t, "DEM-LX2A9B-K3F0", p.Metadata.ID)

	l := sampleLead()
	l.Name = "Mme Martin"
	assert.Equal(t, "Ménage régulier - Mme Martin", NewPayload(l).Deal.Title)
}

func TestForwardPostsPayload(t *testing.T) {
	var (
		gotAuth string
		got     Payload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	require.NoError(t, c.Forward(context.Background(), sampleLead()))
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Lyon", got.Contact.City)
	assert.Equal(t, "Digicode 12B", got.Details.Message)

	c = NewClient(srv.URL, "")
	require.NoError(t, c.Forward(context.Background(), sampleLead()))
	assert.Empty(t, gotAuth)
}

func TestForwardRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Forward(context.Background(), sampleLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	assert.Error(t, NewClient("", "").Forward(context.Background(), sampleLead()))
}
