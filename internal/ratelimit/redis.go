package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis so the quota is shared across
// processes. Each key maps to a counter INCRed inside a pipeline; the TTL
// set on first increment defines the window.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "ratelimit" key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a Redis-backed fixed-window store.
func NewRedisStore(rdb redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: "ratelimit"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment implements Store. INCR is atomic on the server, so concurrent
// requests for the same key observe distinct counts and at most limit of
// them see a value within the quota.
func (s *RedisStore) Increment(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	redisKey := s.prefix + ":" + key

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit window: %w", err)
	}

	count := int(incr.Val())
	now := time.Now()

	remaining := ttl.Val()
	// PTTL reports a negative duration for keys without an expiry: the
	// first increment of a fresh window, or a leftover from a crashed
	// expire. Either way this increment starts the window.
	if remaining < 0 {
		remaining = window
		if err := s.rdb.PExpire(ctx, redisKey, window).Err(); err != nil {
			return Result{}, fmt.Errorf("failed to set rate limit window expiry: %w", err)
		}
	}

	return Result{
		Allowed: count <= limit,
		Count:   count,
		Limit:   limit,
		ResetAt: now.Add(remaining),
	}, nil
}
