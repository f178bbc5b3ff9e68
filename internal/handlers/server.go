package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"laura-backend/internal/auth"
	"laura-backend/internal/cache"
	"laura-backend/internal/contact"
	"laura-backend/internal/middleware"
	"laura-backend/internal/pricing"
	"laura-backend/internal/validation"
)

type ContactNotifier interface {
	NotifyContact(ctx context.Context, sub contact.Submission) error
}

// Server holds the public site endpoints (catalog, estimate, contact) and
// the admin login flow.
type Server struct {
	Val      *validation.Validator
	Log      *slog.Logger
	Cache    cache.Cache
	CacheTTL time.Duration
	Rates    pricing.RatesSource
	Contacts *contact.Store
	Notifier ContactNotifier

	Gate         *auth.Gate
	JWT          *auth.Manager
	CookieSecure bool
	CookiePath   string
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}
