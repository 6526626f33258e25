package middleware

import (
	"context"
	"net/http"
	"strings"

	"task-tracker/server/internal/server/respond"
	userdomain "task-tracker/server/internal/user/domain"
)

const bearerPrefix = "bearer "

// AccessVerifier resolves a bearer access token to the user it identifies.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, token string) (*userdomain.User, error)
}

// RequireAuth wraps next so it only runs with a valid Bearer access token in
// the Authorization header. On success the authenticated user is placed in
// the request context.
func RequireAuth(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				respond.Error(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			user, err := verifier.VerifyAccess(r.Context(), token)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
