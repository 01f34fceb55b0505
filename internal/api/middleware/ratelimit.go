package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
	"github.com/zlin-dev/userhub/internal/platform/logger"
	"github.com/zlin-dev/userhub/internal/ratelimit"
)

// RateLimiterConfig configures the rate limiting middleware.
type RateLimiterConfig struct {
	// Store is the window store; required.
	Store ratelimit.Store
	// Max is the request quota per window.
	Max int
	// Window is the fixed window duration.
	Window time.Duration
	// KeyFunc extracts the client key from a request (default: remote IP).
	KeyFunc func(r *http.Request) string
}

// RateLimiter enforces a per-client request quota inside a fixed window.
// Every response carries the X-RateLimit-* headers; rejected requests get a
// terminal 429 with a retry-after hint.
func RateLimiter(cfg RateLimiterConfig) func(http.Handler) http.Handler {
	if cfg.Store == nil {
		panic("ratelimit middleware: store is required")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)

			res, err := cfg.Store.Increment(r.Context(), key, cfg.Max, cfg.Window)
			if err != nil {
				logger.FromContext(r.Context()).Error("rate limit store failure",
					"error", err,
					"key", key)
				shared.RespondWithError(w, r, httperr.Internal(err))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining()))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := int(res.RetryAfter(time.Now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				logger.FromContext(r.Context()).Warn("rate limit exceeded",
					"key", key,
					"count", res.Count,
					"limit", res.Limit)

				shared.RespondWithError(w, r, httperr.New(
					http.StatusTooManyRequests,
					httperr.CodeRateLimitExceeded,
					"too many requests, please retry later",
				).WithDetails(map[string]any{
					"retry_after": retryAfter,
				}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client key from the request's remote address.
// chi's RealIP middleware runs earlier in the chain, so RemoteAddr already
// reflects X-Forwarded-For/X-Real-IP when a proxy set them.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
