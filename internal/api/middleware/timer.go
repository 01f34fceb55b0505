package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/zlin-dev/userhub/internal/platform/logger"
)

// SlowRequestThreshold is the elapsed time past which a request is flagged
// as slow in the logs.
const SlowRequestThreshold = 1000 * time.Millisecond

// timingWriter stamps X-Response-Time just before the header is flushed,
// the last moment the header set is still mutable.
type timingWriter struct {
	http.ResponseWriter
	start         time.Time
	status        int
	headerWritten bool
}

func newTimingWriter(w http.ResponseWriter) *timingWriter {
	return &timingWriter{ResponseWriter: w, start: time.Now(), status: http.StatusOK}
}

func (tw *timingWriter) WriteHeader(status int) {
	if !tw.headerWritten {
		elapsed := time.Since(tw.start)
		tw.Header().Set("X-Response-Time", formatElapsed(elapsed))
		tw.status = status
		tw.headerWritten = true
	}
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timingWriter) Write(b []byte) (int, error) {
	if !tw.headerWritten {
		tw.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000.0)
}

// ResponseTimer measures wall-clock handling time, stamps it on the
// response and flags slow requests. It never suppresses a panic: the
// deferred bookkeeping runs during unwinding and the panic continues to
// the error boundary. When the error boundary already wrapped the writer
// (so panic responses carry the header too), that wrapper is reused.
func ResponseTimer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw, ok := w.(*timingWriter)
		if !ok {
			tw = newTimingWriter(w)
		}

		defer func() {
			elapsed := time.Since(tw.start)
			if elapsed > SlowRequestThreshold {
				logger.FromContext(r.Context()).Warn("slow request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", tw.status,
					"elapsed_ms", elapsed.Milliseconds())
			}
		}()

		next.ServeHTTP(tw, r)
	})
}
