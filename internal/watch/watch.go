package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixelscan/pixelscan/internal/capture"
	"github.com/pixelscan/pixelscan/internal/logging"
	"github.com/pixelscan/pixelscan/internal/scan"
)

// Options tunes the polling loop.
type Options struct {
	// AcquireTimeout is passed to every frame acquisition.
	AcquireTimeout time.Duration

	// MaxAttempts caps the acquire retries within one iteration. When the
	// cap is exhausted the iteration is skipped, never the loop.
	MaxAttempts int

	// NoFrameBackoff is slept after a timed-out acquisition,
	// ErrorBackoff after any other acquisition failure.
	NoFrameBackoff time.Duration
	ErrorBackoff   time.Duration

	// OnMatch is invoked with absolute screen coordinates for every
	// detected match. Nil means log the match.
	OnMatch func(absX, absY int)
}

// DefaultOptions mirrors the reference tuning: 100 ms acquire timeout, five
// attempts, 50 ms after a timeout, 100 ms after an error.
func DefaultOptions() Options {
	return Options{
		AcquireTimeout: 100 * time.Millisecond,
		MaxAttempts:    5,
		NoFrameBackoff: 50 * time.Millisecond,
		ErrorBackoff:   100 * time.Millisecond,
	}
}

// Watcher drives the acquire → extract → scan cycle over a capture source.
// Single goroutine; cancellation is observed at iteration boundaries, so
// stop latency is bounded by one iteration's acquisition and backoffs.
type Watcher struct {
	src     capture.Source
	scanner *scan.Scanner
	roi     capture.Region
	opts    Options
	log     *slog.Logger
	rate    *rateCounter

	sleep func(time.Duration)
	now   func() time.Time
}

// New builds a watcher over the given source and region of interest. The
// region is clamped against the source's frame bounds every iteration, so a
// mode change after AccessLost recovery keeps the copy in bounds.
func New(src capture.Source, scanner *scan.Scanner, roi capture.Region, opts Options) *Watcher {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Watcher{
		src:     src,
		scanner: scanner,
		roi:     roi,
		opts:    opts,
		log:     logging.L("watch"),
		rate:    newRateCounter(time.Now()),
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Run polls until ctx is cancelled. Capture-path failures never terminate
// the loop; they are logged and the iteration is skipped.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Info("watching region",
		"x", w.roi.X, "y", w.roi.Y,
		"width", w.roi.Width, "height", w.roi.Height)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watch loop cancelled")
			return
		default:
		}
		w.iterate()
	}
}

// iterate performs one acquire/extract/scan/report cycle.
func (w *Watcher) iterate() {
	if !w.acquire() {
		return
	}
	defer w.src.Release()

	frameW, frameH := w.src.Bounds()
	roi := w.roi.ClampTo(frameW, frameH)

	view, err := w.src.Extract(roi)
	if err != nil {
		w.log.Error("region extraction failed", "error", err)
		return
	}

	if m, ok := w.scanner.Scan(view); ok {
		absX, absY := roi.X+m.X, roi.Y+m.Y
		if w.opts.OnMatch != nil {
			w.opts.OnMatch(absX, absY)
		} else {
			w.log.Info("color match", "x", absX, "y", absY)
		}
	}

	w.rate.record()
	if stats, ok := w.rate.sample(w.now()); ok {
		w.log.Info("capture rate",
			"fps", stats.FPS,
			"frames", stats.Frames,
			"timeouts", stats.Timeouts,
			"errors", stats.Errors)
	}
}

// acquire runs the bounded retry sequence for one frame. AccessLost triggers
// a duplication rebuild and resets the attempt counter; device loss rebuilds
// the whole session. Returns false when the attempt cap is exhausted.
func (w *Watcher) acquire() bool {
	attempts := 0
	for attempts < w.opts.MaxAttempts {
		status, err := w.src.Acquire(w.opts.AcquireTimeout)
		switch status {
		case capture.FrameReady:
			return true

		case capture.NoFrame:
			w.rate.recordTimeout()
			attempts++
			w.sleep(w.opts.NoFrameBackoff)

		case capture.AccessLost:
			w.log.Warn("duplication access lost, reinitializing")
			if rerr := w.src.Reinitialize(); rerr != nil {
				w.log.Error("duplication reinit failed", "error", rerr)
				w.rate.recordError()
				attempts++
				w.sleep(w.opts.ErrorBackoff)
			} else {
				attempts = 0
			}

		case capture.DeviceLost:
			w.log.Warn("capture device lost, rebuilding session")
			if rerr := w.src.Reset(); rerr != nil {
				w.log.Error("session rebuild failed", "error", rerr)
				w.rate.recordError()
				attempts++
				w.sleep(w.opts.ErrorBackoff)
			} else {
				attempts = 0
			}

		default:
			w.log.Warn("frame acquisition failed", "error", err)
			w.rate.recordError()
			attempts++
			w.sleep(w.opts.ErrorBackoff)
		}
	}
	w.log.Warn("no frame after retries, skipping iteration",
		"attempts", w.opts.MaxAttempts)
	return false
}
