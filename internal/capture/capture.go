package capture

import (
	"errors"
	"time"
)

// AcquireStatus classifies the outcome of a single frame acquisition.
// Keeping the variants explicit makes the retry state machine in the watch
// loop exhaustively matchable instead of threading HRESULTs around.
type AcquireStatus int

const (
	// FrameReady means a new frame was acquired and is held by the source
	// until Release is called.
	FrameReady AcquireStatus = iota

	// NoFrame means the timeout elapsed without a new frame. This is a
	// routine polling outcome, not an error.
	NoFrame

	// AccessLost means the platform revoked the duplication handle
	// (display-mode change, session lock). The caller must call
	// Reinitialize before acquiring again.
	AccessLost

	// DeviceLost means the GPU device itself was removed or reset. The
	// caller must call Reset to rebuild the whole session.
	DeviceLost

	// AcquireFailed means an unclassified platform failure; the
	// accompanying error carries the detail.
	AcquireFailed
)

func (s AcquireStatus) String() string {
	switch s {
	case FrameReady:
		return "frame-ready"
	case NoFrame:
		return "no-frame"
	case AccessLost:
		return "access-lost"
	case DeviceLost:
		return "device-lost"
	default:
		return "acquire-failed"
	}
}

// Source is a stateful capture session over the primary display. It is owned
// by a single goroutine; acquire, extract and release of one frame never
// overlap with another, so no internal locking is needed.
type Source interface {
	// Acquire blocks up to timeout for the next frame. On FrameReady the
	// frame is held until Release.
	Acquire(timeout time.Duration) (AcquireStatus, error)

	// Extract copies the region (clamped to the frame bounds) into the
	// CPU-readable staging surface and maps it. The returned view is only
	// valid until Release.
	Extract(roi Region) (PixelView, error)

	// Release unmaps the staging surface and returns the held frame to
	// the platform. Safe to call when nothing is held, and on every exit
	// path after a successful Acquire.
	Release()

	// Reinitialize recreates only the duplication handle after AccessLost.
	Reinitialize() error

	// Reset tears down and rebuilds the whole session after DeviceLost.
	Reset() error

	// Bounds reports the dimensions of the duplicated output.
	Bounds() (width, height int)

	// Close releases all session resources.
	Close() error
}

// PixelView is a mapped, row-strided BGRA view of the staging surface.
// 4 bytes per pixel; rows start every Stride bytes. Valid only between
// Extract and Release.
type PixelView struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
}

// Config holds capture session parameters fixed at construction.
type Config struct {
	// DisplayIndex selects the output to duplicate (0 = primary).
	DisplayIndex int

	// RegionWidth/RegionHeight size the staging surface.
	RegionWidth  int
	RegionHeight int
}

// NewSource creates the platform capture session. Initialization failures
// release every partially-acquired resource before returning.
func NewSource(cfg Config) (Source, error) {
	return newPlatformSource(cfg)
}

// PrimaryDisplaySize queries the windowing system for the primary display's
// pixel dimensions.
func PrimaryDisplaySize() (width, height int, err error) {
	return primaryDisplaySize()
}

// Initialization failure taxonomy. All are fatal at startup: there is no
// recovery path short of restarting the process.
var (
	ErrDeviceCreation    = errors.New("d3d11 device creation failed")
	ErrDuplication       = errors.New("output duplication failed")
	ErrStagingAllocation = errors.New("staging surface allocation failed")
)

// ErrNotSupported is returned on platforms without a capture backend.
var ErrNotSupported = errors.New("screen capture not supported on this platform")
