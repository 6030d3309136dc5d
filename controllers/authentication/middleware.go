package authentication

import (
	"context"
	"net/http"
	"strings"

	"talenttrack-backend/controllers/respond"
	"talenttrack-backend/models/users"
)

type ctxKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *users.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by Middleware.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*users.User)
	return u, ok && u != nil
}

// Middleware checks the bearer token and stores the resolved user in the
// request context. 401 for a missing or bad token, 404 when the user is gone.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respond.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}
		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			respond.Error(w, "Authorization header must be Bearer <token>", http.StatusUnauthorized)
			return
		}

		user, err := h.auth.Authenticate(r.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			respond.FromError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// Protect wraps a single handler func with Middleware.
func (h *Handler) Protect(fn http.HandlerFunc) http.Handler {
	return h.Middleware(fn)
}
