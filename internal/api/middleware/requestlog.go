package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/platform/logger"
	"github.com/zlin-dev/userhub/internal/redact"
)

// maxBodySnapshot caps how much of a request body is captured for the
// debug-level snapshot.
const maxBodySnapshot = 4 * 1024

// RequestLogger generates a correlation id per request, attaches an
// id-enriched logger to the context, and records start/completion events.
// A panic from the downstream chain is logged and rethrown unchanged; this
// stage never converts failures into responses.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, requestID := shared.SetRequestID(r.Context())

			reqLog := log.With(slog.String("request_id", requestID))
			ctx = logger.WithLogger(ctx, reqLog)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			reqLog.Info("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			logBodySnapshot(reqLog, r)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			defer func() {
				duration := time.Since(start)

				if rec := recover(); rec != nil {
					reqLog.Error("request panicked",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.Int64("duration_ms", duration.Milliseconds()))
					panic(rec)
				}

				reqLog.Info("request completed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Int64("duration_ms", duration.Milliseconds()))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// logBodySnapshot records a redacted copy of mutating JSON request bodies at
// debug level. Snapshot failures are logged and swallowed; they never affect
// the request.
func logBodySnapshot(log *slog.Logger, r *http.Request) {
	if !log.Enabled(r.Context(), slog.LevelDebug) {
		return
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return
	}
	if r.Body == nil {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySnapshot+1))
	if err != nil {
		log.Debug("failed to read body snapshot", slog.String("error", err.Error()))
		return
	}
	// Hand the bytes back so the handler can still decode them.
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))

	if len(raw) == 0 {
		return
	}
	if len(raw) > maxBodySnapshot {
		// Truncated JSON will not parse; skip rather than log garbage.
		return
	}

	snapshot, err := redact.Body(raw)
	if err != nil {
		log.Debug("failed to parse body snapshot", slog.String("error", err.Error()))
		return
	}

	log.Debug("request body",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("body", snapshot))
}
