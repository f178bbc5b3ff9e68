package middleware

import (
	"crypto/subtle"
	"net/http"

	"laura-backend/internal/auth"
	"laura-backend/internal/transport"
)

// AdminAuth accepts either the static X-Admin-Key header (scripts, lauractl)
// or an access cookie issued after the passphrase login.
func AdminAuth(adminKey string, manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" && manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			if adminKey != "" {
				given := r.Header.Get("X-Admin-Key")
				if given != "" && subtle.ConstantTimeCompare([]byte(given), []byte(adminKey)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}

			if manager != nil {
				cookie, err := r.Cookie(auth.AccessCookie)
				if err == nil && cookie.Value != "" {
					claims, err := manager.ParseAccess(cookie.Value)
					if err == nil && claims.Role == auth.RoleAdmin {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}
