// Package middleware implements the request-processing pipeline: error
// boundary, response timing, request logging, rate limiting, content
// validation and authentication. For a single request the stages run in
// that order; each either delegates to the next stage or writes a terminal
// response and stops the chain.
package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
	"github.com/zlin-dev/userhub/internal/platform/logger"
)

// HandlerFunc is an error-returning HTTP handler. Handlers report failures
// to the error boundary instead of writing error responses themselves.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorBoundary is the outermost pipeline stage. It converts panics and
// handler-returned errors into structured error envelopes; it is the only
// stage permitted to swallow an error.
type ErrorBoundary struct {
	development bool
}

// NewErrorBoundary creates an ErrorBoundary. In development mode error
// responses include the stack trace.
func NewErrorBoundary(development bool) *ErrorBoundary {
	return &ErrorBoundary{development: development}
}

// Recover returns the outermost middleware: any panic escaping the inner
// stages is converted into an error envelope instead of killing the process.
// The writer is wrapped in the timing writer here so the panic envelope
// still carries X-Response-Time; ResponseTimer downstream reuses the wrapper.
func (b *ErrorBoundary) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := newTimingWriter(w)

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					// The connection is gone; let net/http handle it.
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("panic: %v", rec)
				}
				b.render(tw, r, err, debug.Stack())
			}
		}()

		next.ServeHTTP(tw, r)
	})
}

// Handle adapts an error-returning handler to http.HandlerFunc. A returned
// error is converted exactly like a panic reaching Recover, minus the stack
// capture overhead.
func (b *ErrorBoundary) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			b.render(w, r, err, nil)
		}
	}
}

// render classifies err and writes the terminal error envelope.
func (b *ErrorBoundary) render(w http.ResponseWriter, r *http.Request, err error, stack []byte) {
	herr := classify(err)

	body := &shared.ErrorBody{
		Message: herr.Message,
		Code:    herr.Code,
		Status:  herr.Status,
		Details: herr.Details,
		Path:    r.URL.Path,
		Method:  r.Method,
	}
	if b.development && stack != nil {
		body.Stack = string(stack)
	}

	log := logger.FromContext(r.Context())
	if herr.Status >= http.StatusInternalServerError {
		attrs := []any{
			"status", herr.Status,
			"error", err.Error(),
			"path", r.URL.Path,
			"method", r.Method,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if stack != nil {
			attrs = append(attrs, "stack", string(stack))
		}
		log.Error("request failed", attrs...)
	} else {
		log.Warn("request rejected",
			"status", herr.Status,
			"error", err.Error(),
			"path", r.URL.Path,
			"method", r.Method,
			"remote_addr", r.RemoteAddr)
	}

	shared.WriteEnvelope(w, shared.Envelope{
		Success: false,
		Error:   body,
	}, herr.Status)
}

// classify maps an arbitrary error onto the response taxonomy. Structural
// JSON decode failures become 400s (an empty body decodes to io.EOF and is
// the client's fault too), a body that blew past the MaxBytesReader cap is
// a 413, errors already carrying a status keep it, everything else is a 500.
func classify(err error) *httperr.Error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return httperr.New(
			http.StatusRequestEntityTooLarge,
			httperr.CodePayloadTooLarge,
			"request body too large",
		).WithDetails(map[string]any{
			"max_allowed": fmt.Sprintf("%d bytes", maxBytesErr.Limit),
		})
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return httperr.New(http.StatusBadRequest, httperr.CodeInvalidJSON, "invalid JSON body")
	}

	return httperr.AsError(err)
}
