package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"laura-backend/internal/auth"
	"laura-backend/internal/cache"
	"laura-backend/internal/contact"
	"laura-backend/internal/kv"
	"laura-backend/internal/pricing"
	"laura-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu   sync.Mutex
	subs []contact.Submission
	done chan struct{}
}

func (c *captureNotifier) NotifyContact(ctx context.Context, sub contact.Submission) error {
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	close(c.done)
	return nil
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate, err := auth.NewGate("yesbaby")
	require.NoError(t, err)

	s := &Server{
		Val:      validation.New(),
		Log:      log,
		Cache:    cache.NewMemory(),
		CacheTTL: time.Minute,
		Rates:    pricing.StaticRates(pricing.DefaultRates()),
		Contacts: contact.NewStore(kv.NewMemory(), nil, log),
		Gate:     gate,
		JWT:      auth.NewManager("secret", time.Minute, time.Hour),
	}
	r := chi.NewRouter()
	r.Get("/services", s.GetServices)
	r.Post("/estimate", s.Estimate)
	r.Post("/contact", s.CreateContact)
	r.Get("/admin/contacts", s.AdminListContacts)
	r.Post("/admin/login", s.AdminLogin)
	r.Post("/admin/refresh", s.AdminRefresh)
	r.Post("/admin/logout", s.AdminLogout)
	return s, r
}

func serve(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetServicesIsCached(t *testing.T) {
	s, h := newTestServer(t)

	rec := serve(h, http.MethodGet, "/services", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body catalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Services, 5)
	assert.Len(t, body.Frequencies, 4)
	assert.Equal(t, 25.0, body.Rates.BaseRate)

	cached, ok, err := s.Cache.Get(context.Background(), catalogCacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, rec.Body.String(), string(cached))
}

func TestEstimate(t *testing.T) {
	_, h := newTestServer(t)

	rec := serve(h, http.MethodPost, "/estimate", `{"service":"professional","frequency":"weekly","hours":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var est pricing.Estimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &est))
	assert.False(t, est.IsEligible50)
	assert.Equal(t, est.AfterPromo, est.FinalPrice)

	rec = serve(h, http.MethodPost, "/estimate", `{"service":"regular","hours":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateContact(t *testing.T) {
	s, h := newTestServer(t)
	notifier := &captureNotifier{done: make(chan struct{})}
	s.Notifier = notifier

	rec := serve(h, http.MethodPost, "/contact", `{"name":"Mme Martin","email":"m@example.fr","phone":"06 12 34 56 78","area":"Lyon","message":"Bonjour"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier not called")
	}

	rec = serve(h, http.MethodGet, "/admin/contacts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []contact.Submission `json:"items"`
		Total int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "Lyon", list.Items[0].Area)

	rec = serve(h, http.MethodPost, "/contact", `{"name":"X","email":"m@example.fr","phone":"123","area":"Nice","message":"a"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAdminLoginFlow(t *testing.T) {
	_, h := newTestServer(t)

	rec := serve(h, http.MethodPost, "/admin/login", `{"passphrase":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodPost, "/admin/login", `{"passphrase":"yesbaby"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	access := cookieNamed(rec, auth.AccessCookie)
	refresh := cookieNamed(rec, auth.RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, "/api/admin", refresh.Path)

	rec = serve(h, http.MethodPost, "/admin/refresh", "", &http.Cookie{Name: auth.RefreshCookie, Value: access.Value})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodPost, "/admin/refresh", "", &http.Cookie{Name: auth.RefreshCookie, Value: refresh.Value})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodPost, "/admin/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := cookieNamed(rec, auth.AccessCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}
