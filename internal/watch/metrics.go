package watch

import "time"

// intervalStats is one reporting window's worth of loop diagnostics.
type intervalStats struct {
	FPS      float64
	Frames   int
	Timeouts int
	Errors   int
}

// rateCounter accumulates per-iteration diagnostics and reports them once at
// least a full second has elapsed, resetting all counters on each report.
type rateCounter struct {
	frames      int
	timeouts    int
	errors      int
	windowStart time.Time
}

func newRateCounter(now time.Time) *rateCounter {
	return &rateCounter{windowStart: now}
}

// record counts one fully processed iteration (extract and scan completed).
func (c *rateCounter) record() {
	c.frames++
}

// recordTimeout counts one timed-out acquisition attempt.
func (c *rateCounter) recordTimeout() {
	c.timeouts++
}

// recordError counts one failed acquisition attempt.
func (c *rateCounter) recordError() {
	c.errors++
}

// sample returns the window's stats and true when the reporting window has
// elapsed; the counters restart at now.
func (c *rateCounter) sample(now time.Time) (intervalStats, bool) {
	elapsed := now.Sub(c.windowStart).Seconds()
	if elapsed < 1.0 {
		return intervalStats{}, false
	}
	stats := intervalStats{
		FPS:      float64(c.frames) / elapsed,
		Frames:   c.frames,
		Timeouts: c.timeouts,
		Errors:   c.errors,
	}
	c.frames = 0
	c.timeouts = 0
	c.errors = 0
	c.windowStart = now
	return stats, true
}
