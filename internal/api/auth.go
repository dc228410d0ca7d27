package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fleetbooking/internal/user"
	"fleetbooking/pkg/config"
	"fleetbooking/pkg/supabase"
)

// SessionAuth resolves the caller's profile and attaches it to the request context.
//
// Expected header:
// - Authorization: Bearer <Supabase access token>
//
// The token subject selects profile user:<sub>. Older profiles were keyed independently of the auth id, so a
// missing profile is retried by the token's email.
//
// In dev, if Authorization is missing, X-User-ID selects a profile directly.
func SessionAuth(cfg config.Config, users *user.Repository, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token := strings.TrimSpace(authz[7:])
				vs, err := supabase.VerifyAccessToken(token, cfg.Supabase.JWTSecret, cfg.Supabase.Audience, time.Now())
				if err != nil {
					log.Debug("access token rejected", zap.Error(err))
					WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token")
					return
				}

				u, err := users.Get(r.Context(), vs.AuthID)
				if errors.Is(err, user.ErrNotFound) && vs.Email != "" {
					u, err = users.FindByEmail(r.Context(), vs.Email)
				}
				if err != nil {
					if errors.Is(err, user.ErrNotFound) {
						WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
						return
					}
					log.Error("profile lookup failed", zap.String("auth_id", vs.AuthID), zap.Error(err))
					WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "profile lookup failed")
					return
				}

				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
				return
			}

			// Dev fallback
			if !cfg.IsProd() {
				if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
					u, err := users.Get(r.Context(), id)
					if err != nil {
						WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unknown user")
						return
					}
					next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
					return
				}
			}

			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token")
		})
	}
}

// RequireRole rejects callers whose profile role is not listed. Mount after SessionAuth.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFromContext(r.Context())
			if u == nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing user identity")
				return
			}
			if !u.HasRole(roles...) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
