package wizard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"laura-backend/internal/httpx"
	"laura-backend/internal/metrics"
	"laura-backend/internal/middleware"
	"laura-backend/internal/pricing"
	"laura-backend/internal/transport"
	"laura-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	sessions *Sessions
	saver    Saver
	rates    pricing.RatesSource
	val      *validation.Validator
	log      *slog.Logger
}

func NewHandler(sessions *Sessions, saver Saver, rates pricing.RatesSource, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		saver:    saver,
		rates:    rates,
		val:      val,
		log:      log,
	}
}

// Routes mounts the wizard endpoints; submitMW wraps only the submission.
func (h *Handler) Routes(r chi.Router, submitMW ...func(http.Handler) http.Handler) {
	r.Post("/", h.Start)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Patch)
	r.Delete("/{id}", h.Discard)
	r.Post("/{id}/next", h.Next)
	r.Post("/{id}/back", h.Back)
	r.Post("/{id}/goto", h.GoTo)
	r.With(submitMW...).Post("/{id}/submit", h.Submit)
}

type StartRequest struct {
	Service string `json:"service" validate:"omitempty,service"`
}

// PatchRequest carries any subset of the wizard inputs. Options use the
// public option names (ironing, suppliesProvided, windows, groceryShopping).
type PatchRequest struct {
	Service   *string         `json:"service" validate:"omitempty,service"`
	Frequency *string         `json:"frequency" validate:"omitempty,frequency"`
	Hours     *float64        `json:"hours" validate:"omitempty,hours"`
	Options   map[string]bool `json:"options"`
	Contact   *ContactUpdate  `json:"contact"`
	Home      *HomeDetails    `json:"home"`
	Seniors   *SeniorsDetails `json:"seniors"`
	Rental    *RentalDetails  `json:"rental"`
	Pro       *ProDetails     `json:"pro"`
}

type GoToRequest struct {
	Step int `json:"step" validate:"required,min=1,max=4"`
}

type view struct {
	ID        string           `json:"id"`
	State     State            `json:"state"`
	Estimate  pricing.Estimate `json:"estimate"`
	CanSubmit bool             `json:"canSubmit"`
}

func (h *Handler) render(w http.ResponseWriter, status int, id string, st State) {
	transport.WriteJSON(w, status, view{
		ID:        id,
		State:     st,
		Estimate:  st.Estimate(h.rates.Current()),
		CanSubmit: st.CanSubmit(),
	})
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	// an empty body starts without a preselected service
	var req StartRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		log.Warn("wizard start: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusUnprocessableEntity, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	st, err := New(pricing.Service(req.Service))
	if err != nil {
		h.writeStateError(w, log, "wizard start", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id, err := h.sessions.Create(ctx, st)
	if err != nil {
		log.Error("wizard start: session store error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "session store error", nil)
		return
	}
	log.Info("wizard start: ok", slog.String("session_id", id), slog.Int("step", st.Step))
	h.render(w, http.StatusCreated, id, st)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.sessions.Load(ctx, id)
	if err != nil {
		h.writeStateError(w, log, "wizard get", err)
		return
	}
	h.render(w, http.StatusOK, id, st)
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req PatchRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("wizard patch: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("wizard patch: validation error")
		transport.WriteError(w, http.StatusUnprocessableEntity, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.sessions.Update(ctx, id, func(st *State) error {
		return applyPatch(st, req)
	})
	if err != nil {
		h.writeStateError(w, log, "wizard patch", err)
		return
	}
	h.render(w, http.StatusOK, id, st)
}

// applyPatch applies the service first so that details sent in the same
// request are checked against the new service.
func applyPatch(st *State, req PatchRequest) error {
	if req.Service != nil {
		if err := st.SelectService(pricing.Service(*req.Service)); err != nil {
			return err
		}
	}
	if req.Frequency != nil {
		if err := st.SetFrequency(pricing.Frequency(*req.Frequency)); err != nil {
			return err
		}
	}
	if req.Hours != nil {
		if err := st.SetHours(*req.Hours); err != nil {
			return err
		}
	}
	for name, on := range req.Options {
		if err := st.SetOption(name, on); err != nil {
			return err
		}
	}
	if req.Contact != nil {
		if err := st.UpdateContact(*req.Contact); err != nil {
			return err
		}
	}
	if req.Home != nil {
		if err := st.UpdateHome(*req.Home); err != nil {
			return err
		}
	}
	if req.Seniors != nil {
		if err := st.UpdateSeniors(*req.Seniors); err != nil {
			return err
		}
	}
	if req.Rental != nil {
		if err := st.UpdateRental(*req.Rental); err != nil {
			return err
		}
	}
	if req.Pro != nil {
		if err := st.UpdatePro(*req.Pro); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.sessions.Delete(ctx, id); err != nil {
		log.Error("wizard discard: session store error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "session store error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "next", func(st *State) error { return st.Next() })
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "back", func(st *State) error { return st.Back() })
}

func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request) {
	var req GoToRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusUnprocessableEntity, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}
	h.transition(w, r, "goto", func(st *State) error { return st.GoTo(req.Step) })
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(*State) error) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := h.sessions.Update(ctx, id, fn)
	if err != nil {
		metrics.WizardTransitions.WithLabelValues(action, "refused").Inc()
		h.writeStateError(w, log, "wizard "+action, err)
		return
	}
	metrics.WizardTransitions.WithLabelValues(action, "ok").Inc()
	h.render(w, http.StatusOK, id, st)
}

// Submit persists the lead. A storage failure answers success=false and
// leaves the wizard on the contact step so the visitor can retry. After a
// successful submit the wizard details are no longer kept.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	leadID, err := h.sessions.Submit(ctx, id, h.saver)
	switch {
	case err == nil:
	case leadID != "":
		// the lead exists; only clearing the session failed
		log.Warn("wizard submit: session not cleared", slog.String("lead_id", leadID), slog.String("error", err.Error()))
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrInvalidPhone),
		errors.Is(err, ErrInvalidStep), errors.Is(err, ErrAlreadySubmitted):
		metrics.WizardTransitions.WithLabelValues("submit", "refused").Inc()
		h.writeStateError(w, log, "wizard submit", err)
		return
	default:
		metrics.WizardTransitions.WithLabelValues("submit", "failed").Inc()
		log.Error("wizard submit: save failed", slog.String("session_id", id), slog.String("error", err.Error()))
		transport.WriteFailure(w, http.StatusInternalServerError, "Impossible d'enregistrer la demande, veuillez réessayer.")
		return
	}

	metrics.WizardTransitions.WithLabelValues("submit", "ok").Inc()
	log.Info("wizard submit: ok", slog.String("session_id", id), slog.String("lead_id", leadID))
	transport.WriteCreated(w, leadID)
}

func (h *Handler) writeStateError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	field, tag := "", ""
	switch {
	case errors.Is(err, ErrSessionNotFound):
		transport.WriteError(w, http.StatusNotFound, "wizard session not found", nil)
		return
	case errors.Is(err, ErrAlreadySubmitted):
		transport.WriteError(w, http.StatusConflict, err.Error(), nil)
		return
	case errors.Is(err, ErrServiceRequired):
		field, tag = "service", "required"
	case errors.Is(err, ErrScheduleRequired):
		field, tag = "schedule", "required"
	case errors.Is(err, ErrInvalidPhone):
		field, tag = "phone", "phone10"
	case errors.Is(err, ErrInvalidStep):
		field, tag = "step", "invalid"
	case errors.Is(err, ErrUnknownService):
		field, tag = "service", "oneof"
	case errors.Is(err, ErrUnknownFrequency):
		field, tag = "frequency", "oneof"
	case errors.Is(err, ErrInvalidHours):
		field, tag = "hours", "oneof"
	case errors.Is(err, ErrUnknownOption):
		field, tag = "options", "oneof"
	case errors.Is(err, ErrDetailsMismatch):
		field, tag = "details", "service"
	default:
		log.Error(op+": session store error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "session store error", nil)
		return
	}
	log.Warn(op+": refused", slog.String("reason", err.Error()))
	transport.WriteError(w, http.StatusUnprocessableEntity, err.Error(), map[string]string{field: tag})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
