package shared

import (
	"context"

	"github.com/google/uuid"

	"github.com/zlin-dev/userhub/internal/service/auth"
)

// Key type for context values
type ContextKey string

// Context keys for various values
const (
	// ClaimsContextKey is the context key for the authenticated identity.
	ClaimsContextKey ContextKey = "claims"

	// RequestIDKey is the key for the correlation id in the request context.
	RequestIDKey ContextKey = "requestID"
)

// SetRequestID generates a correlation id, stores it in the context and
// returns both. Log lines and error responses carry it so a request can be
// joined across systems.
func SetRequestID(ctx context.Context) (context.Context, string) {
	requestID := uuid.NewString()
	return context.WithValue(ctx, RequestIDKey, requestID), requestID
}

// GetRequestID retrieves the correlation id from the context.
// If no id exists, it returns an empty string.
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return requestID
}

// SetClaims attaches the authenticated identity to the context.
// Claims live for exactly one request; nothing persists them.
func SetClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// GetClaims extracts the authenticated identity from the context.
// Returns the claims and a boolean indicating if they were found.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}
