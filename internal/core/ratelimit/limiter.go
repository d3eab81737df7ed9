// Package ratelimit enforces per-key fixed-window request ceilings.
//
// Fixed windows are a deliberate simplification: counts reset at window
// boundaries, so a client can burst up to twice the limit across a
// boundary. The counter store is injected so a single-process in-memory
// map and a shared Redis deployment are interchangeable.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
)

const (
	MinuteWindow = time.Minute
	DayWindow    = 24 * time.Hour
)

// Limiter checks a key against its minute and day ceilings.
type Limiter struct {
	store ports.CounterStore
}

func NewLimiter(store ports.CounterStore) *Limiter {
	return &Limiter{store: store}
}

// Allow applies one request attempt against both windows for keyID. The
// minute window is checked first; when it rejects, the day counter is left
// untouched so a client hammering the minute limit does not silently burn
// its daily quota. Returns *domain.RateLimitError on rejection.
func (l *Limiter) Allow(ctx context.Context, keyID string, perMinute, perDay int) error {
	if err := l.hit(ctx, keyID, "minute", perMinute, MinuteWindow); err != nil {
		return err
	}
	return l.hit(ctx, keyID, "day", perDay, DayWindow)
}

func (l *Limiter) hit(ctx context.Context, keyID, window string, limit int, length time.Duration) error {
	if limit <= 0 {
		return nil
	}

	allowed, retryAfter, err := l.store.Hit(ctx, counterKey(keyID, window), limit, length)
	if err != nil {
		return fmt.Errorf("rate limit %s window: %w", window, err)
	}
	if !allowed {
		// retryAfter comes from the store's clock; re-deriving it here from
		// wall time would skew whenever the store's clock differs.
		if retryAfter < 0 {
			retryAfter = 0
		}
		return &domain.RateLimitError{Window: window, Limit: limit, RetryAfter: retryAfter}
	}
	return nil
}

func counterKey(keyID, window string) string {
	return "ratelimit:" + keyID + ":" + window
}
