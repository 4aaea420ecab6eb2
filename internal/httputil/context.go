package httputil

import (
	"context"
	"net/http"
)

// contextKey is unexported so other packages cannot collide with our
// request-context values.
type contextKey string

const (
	userIDKey contextKey = "userID"
)

// WithUserID stamps the authenticated user's id onto the request. Set by
// the auth middleware once token verification succeeds.
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID returns the authenticated user's id, or "" for an
// unauthenticated request.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
