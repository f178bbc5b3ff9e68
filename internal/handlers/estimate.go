package handlers

import (
	"net/http"

	"laura-backend/internal/httpx"
	"laura-backend/internal/pricing"
	"laura-backend/internal/transport"
)

type EstimateRequest struct {
	Service       string          `json:"service" validate:"required,service"`
	Frequency     string          `json:"frequency" validate:"omitempty,frequency"`
	Hours         float64         `json:"hours" validate:"omitempty,hours"`
	Options       pricing.Options `json:"options"`
	ResidenceType string          `json:"residenceType" validate:"omitempty,oneof=primary secondary"`
}

// Estimate prices a selection without opening a wizard session.
func (s *Server) Estimate(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req EstimateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("estimate: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	est := pricing.Compute(pricing.Selection{
		Service:       pricing.Service(req.Service),
		Frequency:     pricing.Frequency(req.Frequency),
		Hours:         req.Hours,
		Options:       req.Options,
		ResidenceType: req.ResidenceType,
	}, s.Rates.Current())
	transport.WriteJSON(w, http.StatusOK, est)
}
