package handlers

import (
	"log/slog"
	"net/http"

	"laura-backend/internal/contact"
	"laura-backend/internal/pricing"
	"laura-backend/internal/transport"
)

const catalogCacheKey = "catalog:v1"

type catalogResponse struct {
	Services    []pricing.ServiceInfo   `json:"services"`
	Frequencies []pricing.FrequencyInfo `json:"frequencies"`
	Durations   []pricing.DurationInfo  `json:"durations"`
	Areas       []string                `json:"areas"`
	Rates       pricing.Rates           `json:"rates"`
}

// GetServices serves the booking catalog. The cached payload embeds the
// rates, so a rates reload shows up once the entry expires.
func (s *Server) GetServices(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if s.Cache != nil {
		if cached, ok, err := s.Cache.Get(r.Context(), catalogCacheKey); err == nil && ok {
			log.Debug("services: cache hit")
			writeCachedJSON(w, http.StatusOK, cached)
			return
		}
	}

	response := catalogResponse{
		Services:    pricing.Services,
		Frequencies: pricing.Frequencies,
		Durations:   pricing.Durations,
		Areas:       contact.Areas,
		Rates:       s.Rates.Current(),
	}

	if payload, err := encodeJSON(response); err == nil && s.Cache != nil {
		if err := s.Cache.Set(r.Context(), catalogCacheKey, payload, s.CacheTTL); err != nil {
			log.Warn("services: cache write failed", slog.String("error", err.Error()))
		}
	}

	log.Info("services: ok", slog.Int("count", len(response.Services)))
	transport.WriteJSON(w, http.StatusOK, response)
}
