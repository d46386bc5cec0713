package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// GrabberFactory creates the grabber backing one open source. Grabbers that
// hold device handles may implement io.Closer; they are closed with the source.
type GrabberFactory func() (Grabber, error)

// OpenerConfig configures NewOpener.
type OpenerConfig struct {
	NewGrabber GrabberFactory
	Interval   time.Duration
}

type opener struct {
	cfg    OpenerConfig
	logger *slog.Logger
	open   atomic.Bool
}

// NewOpener returns an Opener that allows at most one live source at a time.
func NewOpener(logger *slog.Logger, cfg OpenerConfig) Opener {
	return &opener{cfg: cfg, logger: logger}
}

func (o *opener) Open(ctx context.Context, target Target) (FrameSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if target == nil || !target.Available() {
		return nil, ErrTargetUnavailable
	}
	if o.cfg.NewGrabber == nil {
		return nil, fmt.Errorf("open source: no grabber configured")
	}
	if !o.open.CompareAndSwap(false, true) {
		return nil, ErrAlreadyOpen
	}
	g, err := o.cfg.NewGrabber()
	if err != nil {
		o.open.Store(false)
		return nil, fmt.Errorf("open source: %w", err)
	}
	s := newCaptureService(o.logger, g, o.cfg.Interval)
	s.onClose = func() { o.open.Store(false) }
	s.start()
	if o.logger != nil {
		o.logger.Debug("frame source opened")
	}
	return s, nil
}
