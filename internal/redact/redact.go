// Package redact masks sensitive fields in request-body snapshots before
// they are logged. It prevents credentials from leaking into debug logs when
// the request logger records mutating request payloads.
package redact

import (
	"encoding/json"
	"strings"
)

// Placeholder replaces redacted field values in logged snapshots.
const Placeholder = "[REDACTED]"

// sensitiveFields are matched case-insensitively against JSON object keys.
var sensitiveFields = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"authorization",
	"api_key",
	"apikey",
}

// Body parses raw JSON and returns a copy with sensitive fields masked,
// ready for structured logging. Nested objects and arrays are walked.
// Returns an error when raw is not valid JSON; callers log and drop the
// snapshot rather than failing the request.
func Body(raw []byte) (any, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	return Value(parsed), nil
}

// Value walks an already-decoded JSON value and masks sensitive fields.
func Value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if isSensitive(k) {
				out[k] = Placeholder
				continue
			}
			out[k] = Value(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Value(inner)
		}
		return out
	default:
		return v
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}
