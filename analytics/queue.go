package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hrtraining/player"
)

const defaultQueueSize = 256

// queue delivers events on a single background goroutine so TrackEvent never
// waits on I/O. Events are dropped when the buffer is full.
type queue struct {
	name    string
	log     *slog.Logger
	timeout time.Duration
	deliver func(ctx context.Context, e player.Event) error

	events chan player.Event
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func newQueue(name string, size int, timeout time.Duration, logger *slog.Logger, deliver func(context.Context, player.Event) error) *queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	q := &queue{
		name:    name,
		log:     logger.With("sink", name),
		timeout: timeout,
		deliver: deliver,
		events:  make(chan player.Event, size),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *queue) run() {
	defer q.wg.Done()
	for e := range q.events {
		ctx := context.Background()
		var cancel context.CancelFunc = func() {}
		if q.timeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, q.timeout)
		}
		if err := q.deliver(ctx, e); err != nil {
			deliveryFailures.WithLabelValues(q.name).Inc()
			q.log.Warn("event delivery failed", "event_type", e.Type, "enrollment_id", e.EnrollmentID, "error", err)
		} else {
			delivered.WithLabelValues(q.name).Inc()
		}
		cancel()
	}
}

func (q *queue) push(e player.Event) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	select {
	case q.events <- e:
	default:
		dropped.WithLabelValues(q.name).Inc()
		q.log.Warn("event queue full, dropping event", "event_type", e.Type, "enrollment_id", e.EnrollmentID)
	}
}

// close stops accepting events and waits until the buffer is drained or ctx ends.
func (q *queue) close(ctx context.Context) error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.events)
		q.mu.Unlock()
	})
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
