package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/proconnect/verification-system/internal/api/metrics"
	"github.com/proconnect/verification-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes trust score recompute jobs to a fixed set of workers
// using consistent hashing on the user id, guaranteeing per-user ordering.
// It serves the bulk maintenance path only; adjudications recompute inline
// within their transaction.
type Dispatcher struct {
	workers []chan string
	scores  ports.TrustScoreService
	users   ports.UserRepository
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, scores ports.TrustScoreService, users ports.UserRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		scores:  scores,
		users:   users,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a recompute job to the worker responsible for the user.
// The call blocks once the worker's buffer is full.
func (d *Dispatcher) Enqueue(userID string) {
	ch := d.workers[d.shardIndex(userID)]
	ch <- userID
	metrics.RecomputeQueueDepth.WithLabelValues(strconv.Itoa(d.shardIndex(userID))).Set(float64(len(ch)))
}

// EnqueueAll schedules a recompute for every user and returns the number of
// jobs scheduled. The enqueueing itself happens in the background so large
// user bases do not block the caller.
func (d *Dispatcher) EnqueueAll(ctx context.Context) (int, error) {
	ids, err := d.users.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("enqueue all: %w", err)
	}

	go func() {
		for _, id := range ids {
			d.Enqueue(id)
		}
	}()

	d.log.Info().Int("count", len(ids)).Msg("bulk trust score recompute scheduled")
	return len(ids), nil
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case userID, ok := <-ch:
			if !ok {
				return
			}
			metrics.RecomputeQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))

			timer := prometheus.NewTimer(metrics.ScoreRecomputeDuration.WithLabelValues("bulk"))
			_, err := d.scores.UpdateUserTrustScore(ctx, userID)
			timer.ObserveDuration()
			if err != nil {
				d.log.Error().Err(err).
					Str("user_id", userID).
					Int("worker_id", id).
					Msg("trust score recompute failed")
			}
		}
	}
}
