// Package auth provides token issuance/verification and password hashing
// for the API's authentication layer.
package auth

import (
	"context"
	"time"
)

// Claims is the decoded identity carried by a verified bearer token.
// It lives in request-scoped state for exactly one request.
type Claims struct {
	UserID    int64
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// ID is the unique token id (jti).
	ID string
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	// GenerateToken creates a signed token for the given identity.
	GenerateToken(ctx context.Context, userID int64, username, role string) (string, error)

	// ValidateToken verifies signature and expiry and returns the claims.
	// Returns ErrExpiredToken, ErrMalformedToken or ErrInvalidToken on
	// failure so callers can classify the rejection.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}
