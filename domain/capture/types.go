package capture

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrSourceClosed is returned by NextFrame once the source has been closed.
	ErrSourceClosed = errors.New("frame source closed")
	// ErrAlreadyOpen is returned when an Opener already has a live source.
	ErrAlreadyOpen = errors.New("frame source already open")
	// ErrTargetUnavailable is returned when the render target cannot be used yet.
	ErrTargetUnavailable = errors.New("render target unavailable")
	// ErrCameraUnsupported is returned when the binary was built without the gocv tag.
	ErrCameraUnsupported = errors.New("camera support not compiled in (build with -tags gocv)")
)

// FrameSnapshot carries the latest captured frame and metadata.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// CaptureStats summarises capture loop behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Skipped          uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	LatestFrameAge   time.Duration
	Sequence         uint64
	FrameBytes       uint64
}

// Target is the part of a render target a source needs to check before opening.
type Target interface {
	Available() bool
}

// FrameSource provides read-only access to captured frames.
//
// LatestFrame never blocks. NextFrame blocks until a frame with a sequence
// greater than after exists, the context ends, or the source is closed.
// Frames produced faster than they are consumed are superseded, never queued.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	NextFrame(ctx context.Context, after uint64) (FrameSnapshot, error)
	PreviewSize() (image.Point, bool)
	SetReadyHandler(func(size image.Point))
	Stats() CaptureStats
	Close() error
}

// Opener opens frame sources bound to a render target.
type Opener interface {
	Open(ctx context.Context, target Target) (FrameSource, error)
}

// Grabber produces one frame per call.
type Grabber interface {
	Grab() (*image.RGBA, error)
}

// GrabberFunc adapts a function to the Grabber interface.
type GrabberFunc func() (*image.RGBA, error)

func (f GrabberFunc) Grab() (*image.RGBA, error) { return f() }
