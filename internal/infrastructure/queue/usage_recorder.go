package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/promptforge/platform-api/internal/api/metrics"
	"github.com/promptforge/platform-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// UsageRecorder applies api-key usage bumps off the request path. Key ids
// are routed to a fixed set of workers by consistent hashing, so updates
// for the same key are applied in order. Failures are logged and swallowed;
// a lost usage increment never fails a request.
type UsageRecorder struct {
	workers []chan string
	keys    ports.APIKeyRepository
	log     zerolog.Logger
}

// NewUsageRecorder creates a UsageRecorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewUsageRecorder(numWorkers int, keys ports.APIKeyRepository, log zerolog.Logger) *UsageRecorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &UsageRecorder{
		workers: make([]chan string, numWorkers),
		keys:    keys,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan string, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *UsageRecorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record enqueues a usage bump for keyID. Never blocks: when the worker's
// buffer is full the bump is dropped and logged.
func (r *UsageRecorder) Record(keyID string) {
	i := r.shardIndex(keyID)
	select {
	case r.workers[i] <- keyID:
		metrics.UsageQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(r.workers[i])))
	default:
		r.log.Warn().Str("key_id", keyID).Msg("usage queue full, dropping usage update")
	}
}

// shardIndex maps a key id deterministically to a worker index.
func (r *UsageRecorder) shardIndex(keyID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(keyID))
	return int(h.Sum32()) % len(r.workers)
}

func (r *UsageRecorder) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case keyID, ok := <-ch:
			if !ok {
				return
			}
			if err := r.keys.IncrementUsage(ctx, keyID); err != nil {
				r.log.Warn().Err(err).
					Str("key_id", keyID).
					Int("worker_id", id).
					Msg("usage update failed")
			}
			metrics.UsageQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
