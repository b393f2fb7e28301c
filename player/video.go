package player

import "math"

// WatchSample is what a single player time update produced.
type WatchSample struct {
	Percentage      float64 `json:"percentage"`
	MaxWatched      float64 `json:"max_watched_percentage"`
	PositionSeconds float64 `json:"position_seconds"`
	// Completed is true only on the sample that first crossed the threshold.
	Completed bool `json:"completed"`
}

// VideoWatchMonitor turns player time updates into watch percentages. It
// tracks the furthest point reached, so seeking backwards never reduces
// credit, and reports completion exactly once.
type VideoWatchMonitor struct {
	threshold  float64
	maxWatched float64
	fired      bool
}

// NewVideoWatchMonitor starts a monitor from a previously persisted maximum.
// A monitor that starts at or above the threshold has already fired.
func NewVideoWatchMonitor(threshold, persistedMax float64) *VideoWatchMonitor {
	if threshold <= 0 {
		threshold = DefaultMinWatchPercentage
	}
	persistedMax = clampPercentage(persistedMax)
	return &VideoWatchMonitor{
		threshold:  threshold,
		maxWatched: persistedMax,
		fired:      persistedMax >= threshold,
	}
}

// Sample records one (currentTime, duration) update. ok is false when the
// sample is unusable (zero, negative or non-finite duration, or non-finite
// time) and was ignored.
func (m *VideoWatchMonitor) Sample(currentSeconds, durationSeconds float64) (s WatchSample, ok bool) {
	if durationSeconds <= 0 || math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) ||
		math.IsNaN(currentSeconds) || math.IsInf(currentSeconds, 0) {
		return WatchSample{}, false
	}
	if currentSeconds < 0 {
		currentSeconds = 0
	}

	pct := clampPercentage(currentSeconds / durationSeconds * 100)
	if pct > m.maxWatched {
		m.maxWatched = pct
	}

	s = WatchSample{
		Percentage:      pct,
		MaxWatched:      m.maxWatched,
		PositionSeconds: currentSeconds,
	}
	if !m.fired && m.maxWatched >= m.threshold {
		m.fired = true
		s.Completed = true
	}
	return s, true
}

func (m *VideoWatchMonitor) MaxWatched() float64 { return m.maxWatched }

func (m *VideoWatchMonitor) Threshold() float64 { return m.threshold }

// Reached reports whether the threshold has been crossed.
func (m *VideoWatchMonitor) Reached() bool { return m.fired }

func clampPercentage(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
