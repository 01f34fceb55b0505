package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/zlin-dev/userhub/internal/httperr"
)

// Envelope is the uniform response body for all terminal responses.
type Envelope struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp string     `json:"timestamp"`
}

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Status  int    `json:"status,omitempty"`
	Details any    `json:"details,omitempty"`
	Path    string `json:"path,omitempty"`
	Method  string `json:"method,omitempty"`
	// Stack is populated only in development mode.
	Stack string `json:"stack,omitempty"`
}

// RespondWithJSON writes a success envelope with the given status and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeEnvelope(w, Envelope{
		Success: true,
		Data:    data,
	}, status)
}

// RespondWithMessage writes a success envelope carrying a message and data.
func RespondWithMessage(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	writeEnvelope(w, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	}, status)
}

// RespondWithError writes a terminal error envelope from the given httperr.
// Middlewares use this for locally resolved failures (validation, rate
// limit, auth); the error boundary uses it for everything that propagated.
func RespondWithError(w http.ResponseWriter, r *http.Request, herr *httperr.Error) {
	body := &ErrorBody{
		Message: herr.Message,
		Code:    herr.Code,
		Status:  herr.Status,
		Details: herr.Details,
	}

	writeEnvelope(w, Envelope{
		Success: false,
		Error:   body,
	}, herr.Status)
}

func writeEnvelope(w http.ResponseWriter, env Envelope, status int) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// WriteEnvelope writes a fully prepared envelope; the error boundary uses it
// to attach path/method/stack detail that plain error responses omit.
func WriteEnvelope(w http.ResponseWriter, env Envelope, status int) {
	writeEnvelope(w, env, status)
}
