package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlin-dev/userhub/internal/api/middleware"
	"github.com/zlin-dev/userhub/internal/api/shared"
	"github.com/zlin-dev/userhub/internal/httperr"
	"github.com/zlin-dev/userhub/internal/ratelimit"
)

// stubLimitStore returns canned results and records the keys it saw.
type stubLimitStore struct {
	result ratelimit.Result
	err    error
	keys   []string
}

func (s *stubLimitStore) Increment(_ context.Context, key string, _ int, _ time.Duration) (ratelimit.Result, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	t.Run("AllowedRequestCarriesHeaders", func(t *testing.T) {
		t.Parallel()
		resetAt := time.Now().Add(30 * time.Second)
		store := &stubLimitStore{result: ratelimit.Result{
			Allowed: true,
			Count:   3,
			Limit:   100,
			ResetAt: resetAt,
		}}

		handler := middleware.RateLimiter(middleware.RateLimiterConfig{
			Store:  store,
			Max:    100,
			Window: time.Minute,
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.RemoteAddr = "203.0.113.9:41000"
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "100", rr.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "97", rr.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, strconv.FormatInt(resetAt.Unix(), 10), rr.Header().Get("X-RateLimit-Reset"))
		require.Len(t, store.keys, 1)
		assert.Equal(t, "203.0.113.9", store.keys[0], "key should be the bare client IP")
	})

	t.Run("BlockedRequestGets429", func(t *testing.T) {
		t.Parallel()
		store := &stubLimitStore{result: ratelimit.Result{
			Allowed: false,
			Count:   101,
			Limit:   100,
			ResetAt: time.Now().Add(45 * time.Second),
		}}

		nextCalled := false
		handler := middleware.RateLimiter(middleware.RateLimiterConfig{
			Store:  store,
			Max:    100,
			Window: time.Minute,
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalled = true
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		assert.False(t, nextCalled, "blocked requests must not reach the handler")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

		retryAfter, err := strconv.Atoi(rr.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.Greater(t, retryAfter, 0)

		var env shared.Envelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, httperr.CodeRateLimitExceeded, env.Error.Code)
		details, ok := env.Error.Details.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, details, "retry_after")
	})

	t.Run("StoreFailureIsInternalError", func(t *testing.T) {
		t.Parallel()
		store := &stubLimitStore{err: errors.New("redis: connection refused")}

		handler := middleware.RateLimiter(middleware.RateLimiterConfig{
			Store:  store,
			Max:    100,
			Window: time.Minute,
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run when the store fails")
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "redis", "store failures must not leak to clients")
	})

	t.Run("CustomKeyFunc", func(t *testing.T) {
		t.Parallel()
		store := &stubLimitStore{result: ratelimit.Result{Allowed: true, Count: 1, Limit: 10, ResetAt: time.Now()}}

		handler := middleware.RateLimiter(middleware.RateLimiterConfig{
			Store:  store,
			Max:    10,
			Window: time.Minute,
			KeyFunc: func(r *http.Request) string {
				return r.Header.Get("X-API-Key")
			},
		})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "client-42")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.Len(t, store.keys, 1)
		assert.Equal(t, "client-42", store.keys[0])
	})

	t.Run("NilStorePanics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			middleware.RateLimiter(middleware.RateLimiterConfig{Max: 10, Window: time.Minute})
		})
	})
}
