package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_Hit(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, retryAfter, err := store.Hit(ctx, "k", 2, time.Minute)
	if err != nil || !allowed {
		t.Fatalf("first hit: allowed=%v err=%v", allowed, err)
	}
	if retryAfter != time.Minute {
		t.Fatalf("retryAfter = %v, want %v", retryAfter, time.Minute)
	}

	if allowed, _, _ = store.Hit(ctx, "k", 2, time.Minute); !allowed {
		t.Fatal("second hit should be allowed")
	}

	// Ten seconds into the window the rejection reports the remaining fifty,
	// measured by the store's clock rather than wall time.
	now = now.Add(10 * time.Second)
	allowed, retryAfter, _ = store.Hit(ctx, "k", 2, time.Minute)
	if allowed {
		t.Fatal("third hit should be rejected")
	}
	if retryAfter != 50*time.Second {
		t.Fatalf("retryAfter = %v, want 50s", retryAfter)
	}

	// A rejected hit must not extend or restart the window.
	store.mu.Lock()
	count := store.counters["k"].count
	store.mu.Unlock()
	if count != 2 {
		t.Fatalf("count = %d, want 2 after rejection", count)
	}

	now = now.Add(61 * time.Second)
	allowed, retryAfter, _ = store.Hit(ctx, "k", 2, time.Minute)
	if !allowed {
		t.Fatal("hit after rollover should be allowed")
	}
	if retryAfter != time.Minute {
		t.Fatalf("fresh window retryAfter = %v, want %v", retryAfter, time.Minute)
	}
}

func TestMemoryStore_ConcurrentHits(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const limit = 50
	const attempts = 200

	var wg sync.WaitGroup
	allowedCh := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, _, err := store.Hit(ctx, "k", limit, time.Minute)
			if err != nil {
				t.Errorf("hit: %v", err)
				return
			}
			allowedCh <- allowed
		}()
	}
	wg.Wait()
	close(allowedCh)

	got := 0
	for allowed := range allowedCh {
		if allowed {
			got++
		}
	}
	if got != limit {
		t.Fatalf("allowed %d of %d concurrent hits, want exactly %d", got, attempts, limit)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Hit(ctx, "stale", 10, time.Minute)
	store.Hit(ctx, "fresh", 10, time.Hour)

	now = now.Add(2 * time.Minute)
	store.sweep()

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.counters["stale"]; ok {
		t.Fatal("expired counter survived the sweep")
	}
	if _, ok := store.counters["fresh"]; !ok {
		t.Fatal("live counter was swept")
	}
}
