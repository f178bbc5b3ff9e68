package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"laura-backend/internal/auth"
	"laura-backend/internal/httpx"
	"laura-backend/internal/transport"
)

type AdminLoginRequest struct {
	Passphrase string `json:"passphrase" validate:"required,max=200"`
}

type AdminLoginResponse struct {
	Status string `json:"status"`
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	var req AdminLoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := s.Val.Struct(req); err != nil {
		log.Warn("admin login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(s.Val.ValidationErrors(err)))
		return
	}

	if s.Gate == nil || s.JWT == nil {
		log.Warn("admin login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	if err := s.Gate.Check(req.Passphrase); err != nil {
		log.Warn("admin login: bad passphrase")
		transport.WriteError(w, http.StatusUnauthorized, "invalid passphrase", nil)
		return
	}

	if err := s.issueCookies(w); err != nil {
		log.Error("admin login: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}
	log.Info("admin login: ok")
	transport.WriteJSON(w, http.StatusOK, AdminLoginResponse{Status: "ok"})
}

func (s *Server) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if s.JWT == nil {
		log.Warn("admin refresh: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	refreshCookie, err := r.Cookie(auth.RefreshCookie)
	if err != nil || refreshCookie.Value == "" {
		log.Warn("admin refresh: missing refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}

	claims, err := s.JWT.ParseRefresh(refreshCookie.Value)
	if err != nil || claims.Role != auth.RoleAdmin {
		log.Warn("admin refresh: invalid refresh token")
		transport.WriteError(w, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}

	if err := s.issueCookies(w); err != nil {
		log.Error("admin refresh: token error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}
	log.Info("admin refresh: ok")
	transport.WriteJSON(w, http.StatusOK, AdminLoginResponse{Status: "ok"})
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	s.clearCookies(w)
	log.Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, AdminLoginResponse{Status: "ok"})
}

func (s *Server) issueCookies(w http.ResponseWriter) error {
	if s.JWT == nil {
		return errors.New("jwt manager not configured")
	}
	access, err := s.JWT.NewAccessToken(auth.RoleAdmin)
	if err != nil {
		return err
	}
	refresh, err := s.JWT.NewRefreshToken(auth.RoleAdmin)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.cookie(auth.AccessCookie, access, "/", int(s.JWT.AccessTTL.Seconds())))
	http.SetCookie(w, s.cookie(auth.RefreshCookie, refresh, s.refreshPath(), int(s.JWT.RefreshTTL.Seconds())))
	return nil
}

func (s *Server) clearCookies(w http.ResponseWriter) {
	for _, c := range []*http.Cookie{
		s.cookie(auth.AccessCookie, "", "/", -1),
		s.cookie(auth.RefreshCookie, "", s.refreshPath(), -1),
	} {
		c.Expires = time.Now().Add(-1 * time.Hour)
		http.SetCookie(w, c)
	}
}

func (s *Server) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// refreshPath scopes the refresh cookie to the admin routes.
func (s *Server) refreshPath() string {
	if s.CookiePath != "" {
		return s.CookiePath
	}
	return "/api/admin"
}
