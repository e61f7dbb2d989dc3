package auth

import (
	"context"
	"net/http"

	"github.com/lvidal/tasklist-be/internal/models"
)

type contextKey string

// sessionContextKey holds the per-request memoized session so protected
// handlers never decode the cookie a second time. The value lives only in the
// request context and is never shared across requests.
const sessionContextKey = contextKey("userSession")

// Middleware protects routes: it resolves the current session once, stores it
// in the request context, and rejects the request when there is none.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.CurrentSession(r)
		if sess == nil {
			http.Error(w, "Missing or invalid session", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session memoized by Middleware, or nil.
func SessionFromContext(ctx context.Context) *models.UserSession {
	sess, _ := ctx.Value(sessionContextKey).(*models.UserSession)
	return sess
}
