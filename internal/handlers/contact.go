package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"laura-backend/internal/contact"
	"laura-backend/internal/httpx"
	"laura-backend/internal/transport"
)

func (s *Server) CreateContact(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req contact.Request
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("contact create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := s.Val.Struct(req); err != nil {
		log.Warn("contact create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := s.Contacts.Add(ctx, req)
	if err != nil {
		log.Error("contact create: storage error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "storage error", nil)
		return
	}

	if s.Notifier != nil {
		go func(created contact.Submission) {
			notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 8*time.Second)
			defer notifyCancel()
			if err := s.Notifier.NotifyContact(notifyCtx, created); err != nil {
				s.Log.Warn("contact create: notification failed",
					slog.String("contact_id", created.ID),
					slog.String("error", err.Error()),
				)
			}
		}(sub)
	}

	log.Info("contact create: stored", slog.String("contact_id", sub.ID), slog.String("area", sub.Area))
	transport.WriteCreated(w, sub.ID)
}

func (s *Server) AdminListContacts(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 500)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page := httpx.Paginate(s.Contacts.List(ctx), limit, offset)
	log.Info("admin contacts list: ok", slog.Int("count", len(page.Items)))
	transport.WriteJSON(w, http.StatusOK, page)
}
