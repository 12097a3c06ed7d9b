// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/jtrask/folio/internal/api/response"
	"github.com/jtrask/folio/internal/auth"
	"github.com/jtrask/folio/internal/core"
)

type contextKey string

const tokenKey contextKey = "auth.token"

// TokenFromContext returns the verified token attached by TokenAuth, if any.
func TokenFromContext(ctx context.Context) (*auth.Token, bool) {
	tok, ok := ctx.Value(tokenKey).(*auth.Token)
	return tok, ok
}

// Verifier checks a presented token value at an instant.
type Verifier interface {
	Verify(ctx context.Context, value string, now time.Time) (*auth.Token, error)
}

// TokenAuth returns middleware that validates the X-API-Token header
// (or a token query parameter) against the token store. If enabled is
// false, requests pass through unauthenticated.
func TokenAuth(store Verifier, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			value := r.Header.Get("X-API-Token")
			if value == "" {
				value = r.URL.Query().Get("token")
			}

			tok, err := store.Verify(r.Context(), value, time.Now().UTC())
			if err != nil {
				response.Error(w, http.StatusUnauthorized, err)
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that rejects requests whose verified
// token is not admin-typed. Must run inside TokenAuth; when auth is
// disabled there is no token in context and admin routes are open.
func RequireAdmin(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			tok, ok := TokenFromContext(r.Context())
			if !ok {
				response.Error(w, http.StatusUnauthorized, core.ErrTokenMissing)
				return
			}
			if !tok.IsAdmin() {
				response.Error(w, http.StatusForbidden, core.ErrAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
