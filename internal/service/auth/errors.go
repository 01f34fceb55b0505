package auth

import "errors"

// Token validation errors. The middleware maps each onto a stable
// machine-readable 401 code.
var (
	// ErrExpiredToken is returned when the token's expiry has passed.
	ErrExpiredToken = errors.New("token expired")

	// ErrMalformedToken is returned when the token cannot be parsed or its
	// signature does not verify.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidToken is returned for any other verification failure.
	ErrInvalidToken = errors.New("invalid token")
)
