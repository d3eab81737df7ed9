package ratelimit

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = 10 * time.Minute

type counter struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local counter store. Increments are guarded by a
// mutex, so it is safe across goroutines but not across instances; a
// multi-instance deployment should use the Redis store instead.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

// Hit implements ports.CounterStore with fixed-window semantics: a fresh or
// elapsed window restarts at count 1; a full window rejects without
// incrementing. The remaining window is computed against the store's clock.
func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || now.After(c.resetAt) {
		c = &counter{count: 1, resetAt: now.Add(window)}
		s.counters[key] = c
		return true, window, nil
	}

	if c.count >= limit {
		return false, c.resetAt.Sub(now), nil
	}

	c.count++
	return true, c.resetAt.Sub(now), nil
}

// StartSweeper launches a goroutine that periodically drops expired
// counters so idle keys do not accumulate forever. It stops when ctx is
// cancelled.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, c := range s.counters {
		if now.After(c.resetAt) {
			delete(s.counters, key)
		}
	}
}
