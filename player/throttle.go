package player

import (
	"time"

	"golang.org/x/time/rate"
)

// pendingWatch is the newest watch state not yet written to the store.
type pendingWatch struct {
	percentage float64
	position   float64
}

// watchThrottle limits watch-progress writes to one per interval per content
// item. Samples that are not written are folded into a single pending write.
type watchThrottle struct {
	interval time.Duration
	limiters map[string]*rate.Limiter
	pending  map[string]pendingWatch
}

func newWatchThrottle(interval time.Duration) *watchThrottle {
	return &watchThrottle{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
		pending:  make(map[string]pendingWatch),
	}
}

// allow reports whether a write for contentID may go out at now. A zero
// interval disables throttling.
func (t *watchThrottle) allow(contentID string, now time.Time) bool {
	if t.interval <= 0 {
		return true
	}
	l, ok := t.limiters[contentID]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[contentID] = l
	}
	return l.AllowN(now, 1)
}

// hold keeps w as the pending write for contentID. Percentages only grow.
func (t *watchThrottle) hold(contentID string, w pendingWatch) {
	if prev, ok := t.pending[contentID]; ok && prev.percentage > w.percentage {
		w.percentage = prev.percentage
	}
	t.pending[contentID] = w
}

func (t *watchThrottle) clear(contentID string) { delete(t.pending, contentID) }

// drain returns and forgets every pending write.
func (t *watchThrottle) drain() map[string]pendingWatch {
	out := t.pending
	t.pending = make(map[string]pendingWatch)
	return out
}

func (t *watchThrottle) hasPending() bool { return len(t.pending) > 0 }
