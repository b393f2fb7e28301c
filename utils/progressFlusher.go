package utils

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Flusher writes pending progress of open sessions.
type Flusher interface {
	FlushAll(ctx context.Context) (int, error)
}

// ProgressFlusher periodically flushes throttled watch-progress writes
type ProgressFlusher struct {
	cron    *cron.Cron
	target  Flusher
	timeout time.Duration
}

// InitializeProgressFlusher schedules FlushProgress on schedule and starts it
func InitializeProgressFlusher(target Flusher, schedule string) (*ProgressFlusher, error) {
	log.Println("[PROGRESS-FLUSHER] Initializing progress flusher...")

	f := &ProgressFlusher{
		cron:    cron.New(),
		target:  target,
		timeout: 30 * time.Second,
	}
	if _, err := f.cron.AddFunc(schedule, func() { f.FlushProgress(context.Background()) }); err != nil {
		return nil, err
	}

	f.cron.Start()
	log.Printf("[PROGRESS-FLUSHER] Progress flusher started - runs %s", schedule)
	return f, nil
}

// FlushProgress runs one flush. Sessions that fail stay dirty and are retried
// on the next run.
func (f *ProgressFlusher) FlushProgress(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	flushed, err := f.target.FlushAll(ctx)
	if err != nil {
		log.Printf("[PROGRESS-FLUSHER] Error flushing progress: %v", err)
	}
	if flushed > 0 {
		log.Printf("[PROGRESS-FLUSHER] Flushed %d sessions", flushed)
	}
	return flushed
}

// Stop stops the schedule and runs a last flush
func (f *ProgressFlusher) Stop(ctx context.Context) {
	<-f.cron.Stop().Done()
	f.FlushProgress(ctx)
	log.Println("[PROGRESS-FLUSHER] Progress flusher stopped")
}
