package leads

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"laura-backend/internal/httpx"
	"laura-backend/internal/middleware"
	"laura-backend/internal/pricing"
	"laura-backend/internal/transport"
	"laura-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	store *Store
	val   *validation.Validator
	log   *slog.Logger
}

func NewHandler(store *Store, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		val:   val,
		log:   log,
	}
}

// Routes mounts the admin lead endpoints. Callers wrap it with admin auth.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.AdminList)
	r.Get("/stats", h.AdminStats)
	r.Get("/stats.png", h.AdminStatsChart)
	r.Get("/export", h.AdminExport)
	r.Get("/{id}", h.AdminGetByID)
	r.Patch("/{id}/status", h.AdminUpdateStatus)
	r.Put("/{id}/notes", h.AdminUpdateNotes)
	r.Delete("/{id}", h.AdminDelete)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 500)
	if err != nil {
		log.Warn("admin leads list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := Filter{
		Status:  Status(strings.TrimSpace(r.URL.Query().Get("status"))),
		Service: pricing.Service(strings.TrimSpace(r.URL.Query().Get("service"))),
		Query:   r.URL.Query().Get("q"),
	}
	if filter.Status != "" && !IsValidStatus(string(filter.Status)) {
		transport.WriteError(w, http.StatusBadRequest, "invalid query", map[string]string{"status": "oneof"})
		return
	}
	if filter.Service != "" && !pricing.IsValidService(string(filter.Service)) {
		transport.WriteError(w, http.StatusBadRequest, "invalid query", map[string]string{"service": "oneof"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page := httpx.Paginate(filter.Apply(h.store.GetAll(ctx)), limit, offset)
	log.Info("admin leads list: ok", slog.Int("count", len(page.Items)), slog.Int64("total", page.Total))
	transport.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) AdminGetByID(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lead, err := h.store.Get(ctx, id)
	if err != nil {
		log.Warn("admin leads get: not found", slog.String("lead_id", id))
		transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req StatusUpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin leads status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin leads status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.store.UpdateStatus(ctx, id, Status(req.Status))
	if h.writeMutationError(w, log, "admin leads status", id, ok, err) {
		return
	}
	log.Info("admin leads status: ok", slog.String("lead_id", id), slog.String("status", req.Status))
	h.writeLead(w, r, id)
}

func (h *Handler) AdminUpdateNotes(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req NoteRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin leads notes: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.store.AddNote(ctx, id, req.Notes)
	if h.writeMutationError(w, log, "admin leads notes", id, ok, err) {
		return
	}
	log.Info("admin leads notes: ok", slog.String("lead_id", id))
	h.writeLead(w, r, id)
}

// AdminDelete requires ?confirm=true, mirroring the confirmation prompt of
// the admin screen.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirmed {
		transport.WriteError(w, http.StatusPreconditionRequired, "confirmation required", map[string]string{"confirm": "required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ok, err := h.store.Delete(ctx, id)
	if err != nil {
		log.Error("admin leads delete: storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
		return
	}
	log.Info("admin leads delete: ok", slog.String("lead_id", id), slog.Bool("deleted", ok))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": ok,
	})
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	transport.WriteJSON(w, http.StatusOK, ComputeStats(h.store.GetAll(ctx)))
}

func (h *Handler) AdminStatsChart(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	png, err := RenderStatusChart(ComputeStats(h.store.GetAll(ctx)))
	if err != nil {
		log.Error("admin leads chart: render failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "chart error", nil)
		return
	}
	transport.WriteFile(w, "image/png", "", png)
}

func (h *Handler) AdminExport(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	body := h.store.ExportAll(ctx)
	name := ExportFilename(h.store.now(), h.store.location)
	transport.WriteFile(w, "text/csv; charset=utf-8", name, body)
	log.Info("admin leads export: ok", slog.String("filename", name))
}

func (h *Handler) writeMutationError(w http.ResponseWriter, log *slog.Logger, op, id string, ok bool, err error) bool {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"status": "oneof"})
		return true
	case err != nil:
		log.Error(op+": storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
		return true
	case !ok:
		log.Warn(op+": not found", slog.String("lead_id", id))
		transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
		return true
	}
	return false
}

func (h *Handler) writeLead(w http.ResponseWriter, r *http.Request, id string) {
	lead, err := h.store.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, lead)
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
