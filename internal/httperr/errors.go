// Package httperr defines the error taxonomy shared by handlers and the
// error-boundary middleware. Every terminal error response in the API is
// built from an *Error carrying an HTTP status and a stable machine-readable
// code.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable error codes exposed to clients.
const (
	CodeMissingAuthToken       = "MISSING_AUTH_TOKEN"
	CodeInvalidAuthFormat      = "INVALID_AUTH_FORMAT"
	CodeTokenExpired           = "TOKEN_EXPIRED"
	CodeMalformedToken         = "MALFORMED_TOKEN"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeMissingContentType     = "MISSING_CONTENT_TYPE"
	CodeUnsupportedContentType = "UNSUPPORTED_CONTENT_TYPE"
	CodePayloadTooLarge        = "PAYLOAD_TOO_LARGE"
	CodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	CodeInvalidJSON            = "INVALID_JSON"
	CodeValidationFailed       = "VALIDATION_FAILED"
	CodeNotFound               = "NOT_FOUND"
	CodeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	CodeConflict               = "CONFLICT"
	CodeInternal               = "INTERNAL_ERROR"
)

// Error is an error with an HTTP status, a machine-readable code, and an
// optional details payload serialized into the response envelope.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
	// Err is the wrapped cause, logged but never serialized to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given status, code and message.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Wrap attaches a cause to a copy of e. The original is left untouched so
// package-level sentinels stay immutable.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// WithDetails attaches a details payload to a copy of e.
func (e *Error) WithDetails(details any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// BadRequest creates a 400 error with the VALIDATION_FAILED code.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, CodeNotFound, message)
}

// Conflict creates a 409 error.
func Conflict(message string) *Error {
	return New(http.StatusConflict, CodeConflict, message)
}

// Unauthorized creates a 401 error with the given auth code.
func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message)
}

// Internal creates a 500 error wrapping the cause. The client sees only the
// generic message; the cause stays in the logs.
func Internal(err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// AsError converts err into an *Error, wrapping unclassified errors as 500s.
func AsError(err error) *Error {
	var herr *Error
	if errors.As(err, &herr) {
		return herr
	}
	return Internal(err)
}
