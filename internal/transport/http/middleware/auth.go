package middleware

import (
	"context"
	"net/http"
	"strconv"

	"campusfeed/internal/httputil"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for the acting user's ID
	UserIDKey contextKey = "user_id"

	// UserIDHeader carries the acting user on requests to the mock API.
	// The mock server trusts it; there is no token verification.
	UserIDHeader = "X-User-ID"
)

// IdentityMiddleware reads the acting user from the X-User-ID header and
// rejects requests without a valid one.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			httputil.WriteUnauthorized(w, "Missing X-User-ID header")
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			httputil.WriteUnauthorized(w, "Invalid X-User-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalIdentityMiddleware attaches the user when the header is valid and
// lets anonymous requests through otherwise.
func OptionalIdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := strconv.ParseInt(r.Header.Get(UserIDHeader), 10, 64); err == nil && userID > 0 {
			r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
