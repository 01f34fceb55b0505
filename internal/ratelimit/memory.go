package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window tracks one client's count inside the current fixed window.
type window struct {
	count   int
	startAt time.Time
}

// MemoryStore implements Store with an in-process map. A single mutex
// serializes the read-count-then-increment sequence so the window boundary
// is exact under concurrency.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	// timeFunc is injectable for tests.
	timeFunc func() time.Time

	cleanupEvery time.Duration
	lastCleanup  time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithTimeFunc overrides the clock; used by tests to step across windows.
func WithTimeFunc(f func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.timeFunc = f }
}

// WithCleanupInterval sets how often expired windows are swept from the map.
func WithCleanupInterval(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

// NewMemoryStore creates an in-process fixed-window store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:      make(map[string]*window),
		timeFunc:     time.Now,
		cleanupEvery: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastCleanup = s.timeFunc()
	return s
}

// Increment implements Store.
func (s *MemoryStore) Increment(ctx context.Context, key string, limit int, windowDur time.Duration) (Result, error) {
	now := s.timeFunc()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.maybeCleanup(now, windowDur)

	w, ok := s.windows[key]
	if !ok || now.Sub(w.startAt) >= windowDur {
		w = &window{count: 0, startAt: now}
		s.windows[key] = w
	}

	w.count++

	return Result{
		Allowed: w.count <= limit,
		Count:   w.count,
		Limit:   limit,
		ResetAt: w.startAt.Add(windowDur),
	}, nil
}

// maybeCleanup sweeps expired windows. Called with the mutex held; piggybacks
// on request traffic so no background goroutine is needed.
func (s *MemoryStore) maybeCleanup(now time.Time, windowDur time.Duration) {
	if s.cleanupEvery <= 0 || now.Sub(s.lastCleanup) < s.cleanupEvery {
		return
	}
	s.lastCleanup = now
	for key, w := range s.windows {
		if now.Sub(w.startAt) >= windowDur {
			delete(s.windows, key)
		}
	}
}

// Len reports the number of tracked keys; used by tests and debug endpoints.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
