package watch

import (
	"math"
	"testing"
	"time"
)

func TestRateCounterReportsAfterOneSecond(t *testing.T) {
	start := time.Unix(1000, 0)
	c := newRateCounter(start)

	for i := 0; i < 30; i++ {
		c.record()
	}

	if _, ok := c.sample(start.Add(999 * time.Millisecond)); ok {
		t.Fatal("window under one second should not report")
	}

	stats, ok := c.sample(start.Add(1 * time.Second))
	if !ok {
		t.Fatal("expected a report at exactly one second")
	}
	if math.Abs(stats.FPS-30.0) > 1e-9 {
		t.Fatalf("fps = %v, want 30.0", stats.FPS)
	}
	if stats.Frames != 30 {
		t.Fatalf("frames = %d, want 30", stats.Frames)
	}
}

func TestRateCounterResetsAfterReport(t *testing.T) {
	start := time.Unix(1000, 0)
	c := newRateCounter(start)

	c.record()
	c.record()
	reportAt := start.Add(2 * time.Second)
	stats, ok := c.sample(reportAt)
	if !ok {
		t.Fatal("expected a report")
	}
	if math.Abs(stats.FPS-1.0) > 1e-9 {
		t.Fatalf("fps = %v, want 1.0 (2 frames / 2s)", stats.FPS)
	}

	// Counters restarted: a fresh second with 5 frames reports 5.0.
	for i := 0; i < 5; i++ {
		c.record()
	}
	stats, ok = c.sample(reportAt.Add(1 * time.Second))
	if !ok {
		t.Fatal("expected a second report")
	}
	if math.Abs(stats.FPS-5.0) > 1e-9 {
		t.Fatalf("fps = %v, want 5.0", stats.FPS)
	}
}

func TestRateCounterTracksTimeoutsAndErrors(t *testing.T) {
	start := time.Unix(1000, 0)
	c := newRateCounter(start)

	c.record()
	c.recordTimeout()
	c.recordTimeout()
	c.recordError()

	stats, ok := c.sample(start.Add(1 * time.Second))
	if !ok {
		t.Fatal("expected a report")
	}
	if stats.Frames != 1 || stats.Timeouts != 2 || stats.Errors != 1 {
		t.Fatalf("got frames=%d timeouts=%d errors=%d, want 1/2/1",
			stats.Frames, stats.Timeouts, stats.Errors)
	}

	// All counters reset together.
	stats, ok = c.sample(start.Add(2 * time.Second))
	if !ok {
		t.Fatal("expected a report")
	}
	if stats.Frames != 0 || stats.Timeouts != 0 || stats.Errors != 0 {
		t.Fatalf("counters not reset: %+v", stats)
	}
}
