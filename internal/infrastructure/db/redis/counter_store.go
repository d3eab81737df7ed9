package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript implements one fixed-window attempt atomically. A full window
// rejects without incrementing; the first increment of a fresh window sets
// the expiry that defines the window boundary. Returns {allowed, pttl_ms}.
var hitScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
  return {0, redis.call('PTTL', KEYS[1])}
end
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return {1, redis.call('PTTL', KEYS[1])}
`)

// CounterStore is a Redis-backed fixed-window counter store for rate
// limiting across multiple service instances. Expiry doubles as garbage
// collection, so stale counters never accumulate.
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore wraps the given Redis client.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// Hit implements ports.CounterStore. The remaining window comes straight
// from Redis's PTTL, so it reflects the server's clock, not this process's.
func (s *CounterStore) Hit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	res, err := hitScript.Run(ctx, s.client, []string{key}, limit, window.Milliseconds()).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("counter hit: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("counter hit: unexpected reply %v", res)
	}

	allowed := res[0] == 1
	retryAfter := window
	if pttl := res[1]; pttl > 0 {
		retryAfter = time.Duration(pttl) * time.Millisecond
	}
	return allowed, retryAfter, nil
}
