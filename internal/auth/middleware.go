package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/diewo77/timebill/internal/httpx"
)

type ctxKey string

const (
	userIDCtxKey   = ctxKey("userID")
	usernameCtxKey = ctxKey("username")
)

// UserVerifier is an optional callback to confirm that a token's user still
// exists. Set during app bootstrap; a token for a deleted user is rejected.
type UserVerifier func(ctx context.Context, uid uint) bool

// WithUser stores the authenticated identity in the context.
func WithUser(ctx context.Context, userID uint, username string) context.Context {
	ctx = context.WithValue(ctx, userIDCtxKey, userID)
	return context.WithValue(ctx, usernameCtxKey, username)
}

// UserIDFromContext extracts the authenticated user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uint)
	return id, ok
}

// UsernameFromContext extracts the authenticated username.
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameCtxKey).(string)
	return name, ok
}

// bearerToken pulls the token out of an "Authorization: Bearer <token>"
// header. Empty string when absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuth validates the bearer token, confirms the user still exists,
// and attaches the identity to the request context. Anything short of that
// is a 401.
func RequireAuth(tm *TokenManager, verify UserVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "authorization token required", nil)
				return
			}
			claims, err := tm.Verify(token)
			if err != nil {
				httpx.JSONError(w, http.StatusUnauthorized, "invalid or expired token", nil)
				return
			}
			if verify != nil && !verify(r.Context(), claims.UserID) {
				httpx.JSONError(w, http.StatusUnauthorized, "user not found", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Username)))
		})
	}
}
