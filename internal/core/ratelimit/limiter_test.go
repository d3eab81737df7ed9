package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/promptforge/platform-api/internal/core/domain"
)

func TestLimiter_WindowRollover(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	limiter := NewLimiter(store)
	ctx := context.Background()

	// Limit 2/minute: allow, allow, reject.
	for i := 0; i < 2; i++ {
		if err := limiter.Allow(ctx, "k1", 2, 1000); err != nil {
			t.Fatalf("call %d: unexpected rejection: %v", i+1, err)
		}
	}

	// The store runs on a fixed clock far from wall time; retryAfter must
	// still come out of that clock, not the process's.
	now = now.Add(15 * time.Second)
	err := limiter.Allow(ctx, "k1", 2, 1000)
	var rle *domain.RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rle.Window != "minute" {
		t.Fatalf("window = %s, want minute", rle.Window)
	}
	if rle.RetryAfter != 45*time.Second {
		t.Fatalf("retryAfter = %v, want 45s", rle.RetryAfter)
	}

	// After the reset boundary a fresh window opens.
	now = now.Add(MinuteWindow + time.Second)
	if err := limiter.Allow(ctx, "k1", 2, 1000); err != nil {
		t.Fatalf("post-rollover call rejected: %v", err)
	}
}

func TestLimiter_MinuteRejectLeavesDayUntouched(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	limiter := NewLimiter(store)
	ctx := context.Background()

	// Exhaust the minute window, then hammer it. The day counter must only
	// reflect the allowed calls.
	for i := 0; i < 2; i++ {
		if err := limiter.Allow(ctx, "k1", 2, 100); err != nil {
			t.Fatalf("setup call %d rejected: %v", i+1, err)
		}
	}
	for i := 0; i < 5; i++ {
		if err := limiter.Allow(ctx, "k1", 2, 100); err == nil {
			t.Fatalf("expected minute rejection on hammer call %d", i+1)
		}
	}

	store.mu.Lock()
	day := store.counters[counterKey("k1", "day")]
	store.mu.Unlock()
	if day == nil {
		t.Fatal("day counter missing")
	}
	if day.count != 2 {
		t.Fatalf("day count = %d, want 2 (rejected calls must not burn daily quota)", day.count)
	}
}

func TestLimiter_DayCeiling(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }

	limiter := NewLimiter(store)
	ctx := context.Background()

	// Generous minute limit, day limit of 3. Spread calls across minutes so
	// only the day ceiling can trip.
	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx, "k1", 100, 3); err != nil {
			t.Fatalf("call %d rejected: %v", i+1, err)
		}
		now = now.Add(2 * time.Minute)
	}

	err := limiter.Allow(ctx, "k1", 100, 3)
	var rle *domain.RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rle.Window != "day" {
		t.Fatalf("window = %s, want day", rle.Window)
	}
}

func TestLimiter_ZeroLimitDisablesWindow(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	for i := 0; i < 10; i++ {
		if err := limiter.Allow(context.Background(), "k1", 0, 0); err != nil {
			t.Fatalf("unexpected rejection with limits disabled: %v", err)
		}
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(NewMemoryStore())
	ctx := context.Background()

	if err := limiter.Allow(ctx, "a", 1, 100); err != nil {
		t.Fatalf("key a first call: %v", err)
	}
	if err := limiter.Allow(ctx, "a", 1, 100); err == nil {
		t.Fatal("key a second call should be rejected")
	}
	if err := limiter.Allow(ctx, "b", 1, 100); err != nil {
		t.Fatalf("key b must not share key a's window: %v", err)
	}
}
