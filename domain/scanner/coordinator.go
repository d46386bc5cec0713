package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/decode"
)

// Options configures NewCoordinator.
type Options struct {
	Logger  *slog.Logger
	Opener  capture.Opener
	Target  RenderTarget
	Decoder decode.Decoder
	// Events is created when nil.
	Events *Dispatcher

	StopTimeout  time.Duration
	OpenAttempts int
	OpenBackoff  time.Duration
	MirrorLayout bool

	// OnFatal receives errors the hosting context must act on by ending the
	// scanning session (no render target, source never opened).
	OnFatal func(error)
	// OnLayout is called on the control goroutine when the preview geometry
	// becomes known and the preview placement must be recomputed.
	OnLayout func()
}

// Coordinator owns the frame source and decode worker of at most one session
// and routes decode results to the registered callback according to the mode.
//
// Resume, Pause, Close, DecodeSingle, DecodeContinuous, StopDecoding,
// SetDecoder, Layout, LatestFrame and the dispatch methods (Drain, Run) must
// be called from the control goroutine. Other goroutines use Invoke.
type Coordinator struct {
	logger *slog.Logger
	opener capture.Opener
	target RenderTarget
	events *Dispatcher
	opts   Options

	decoder decode.Decoder

	state      SessionState
	session    uuid.UUID
	source     capture.FrameSource
	worker     *DecodeWorker
	hasSurface bool
	sub        *Subscription

	mode     DecodeMode
	callback ResultCallback

	preview           image.Point
	hasPreview        bool
	layoutWithPreview bool
	lastBounds        image.Point
	lastRect          image.Rectangle

	succeeded uint64
	failed    uint64
	delivered uint64
	status    atomic.Pointer[Status]
}

// NewCoordinator validates opts and returns an idle coordinator.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Opener == nil {
		return nil, ErrNoOpener
	}
	if opts.Decoder == nil {
		return nil, ErrNoDecoder
	}
	if opts.OpenAttempts <= 0 {
		opts.OpenAttempts = 1
	}
	events := opts.Events
	if events == nil {
		events = NewDispatcher()
	}
	c := &Coordinator{
		logger:  opts.Logger,
		opener:  opts.Opener,
		target:  opts.Target,
		events:  events,
		opts:    opts,
		decoder: opts.Decoder,
	}
	c.publish()
	return c, nil
}

// Events exposes the dispatcher so producers outside the package can post.
func (c *Coordinator) Events() *Dispatcher { return c.events }

// Invoke runs fn on the control goroutine during the next dispatch. It is
// the only coordinator method safe to call from any goroutine besides Status.
func (c *Coordinator) Invoke(fn func()) bool {
	if fn == nil {
		return false
	}
	return c.events.Post(Event{Kind: EventCall, Call: fn})
}

// Drain handles queued events and returns how many were handled.
func (c *Coordinator) Drain() int { return c.events.Drain(c.handle) }

// Run handles events until ctx is done or the dispatcher is closed.
func (c *Coordinator) Run(ctx context.Context) error { return c.events.Run(ctx, c.handle) }

// Status returns the latest published snapshot.
func (c *Coordinator) Status() Status {
	if s := c.status.Load(); s != nil {
		return *s
	}
	return Status{}
}

// Mode returns the current decode mode.
func (c *Coordinator) Mode() DecodeMode { return c.mode }

// State returns the current session state.
func (c *Coordinator) State() SessionState { return c.state }

// Resume starts a session now if the render target is available, otherwise
// once it becomes available. Resuming an active session logs a warning and
// does nothing.
func (c *Coordinator) Resume() error {
	if c.target == nil {
		c.fatal(ErrNoRenderTarget)
		return ErrNoRenderTarget
	}
	if c.state == StateActive {
		c.warn("resume called with an active session")
		return nil
	}
	if c.sub == nil {
		c.sub = c.target.Subscribe(c.onSurface)
	}
	c.hasSurface = c.target.Available()
	if c.hasSurface {
		return c.startSession()
	}
	c.awaitTarget()
	return nil
}

func (c *Coordinator) awaitTarget() {
	c.hasSurface = false
	c.state = StateAwaitingTarget
	c.publish()
}

// Pause stops the worker (waiting for it to exit), closes the source and,
// when the render target is not available, drops the availability
// subscription. Pausing an idle coordinator is a no-op.
func (c *Coordinator) Pause() {
	if c.worker != nil {
		c.worker.Stop()
		c.worker = nil
	}
	if c.source != nil {
		if err := c.source.Close(); err != nil && c.logger != nil {
			c.logger.Warn("frame source close", "error", err)
		}
		c.source = nil
	}
	if !c.hasSurface && c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}
	if c.state != StateIdle && c.logger != nil {
		c.logger.Debug("session paused", "session", c.session.String())
	}
	c.session = uuid.Nil
	c.state = StateIdle
	c.hasPreview = false
	c.preview = image.Point{}
	c.layoutWithPreview = false
	c.publish()
}

// Close pauses and always drops the availability subscription.
func (c *Coordinator) Close() {
	c.Pause()
	if c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}
}

// DecodeSingle delivers the next result to cb, then stops decoding.
func (c *Coordinator) DecodeSingle(cb ResultCallback) { c.setMode(ModeSingle, cb) }

// DecodeContinuous delivers every result to cb until StopDecoding.
func (c *Coordinator) DecodeContinuous(cb ResultCallback) { c.setMode(ModeContinuous, cb) }

// StopDecoding clears the mode and callback. Results keep being decoded while
// a session is active but are discarded.
func (c *Coordinator) StopDecoding() { c.setMode(ModeNone, nil) }

func (c *Coordinator) setMode(mode DecodeMode, cb ResultCallback) {
	if cb == nil {
		mode = ModeNone
	}
	if mode == ModeNone {
		cb = nil
	}
	c.mode, c.callback = mode, cb
	c.publish()
}

// SetDecoder replaces the decoder for the running worker and future sessions.
func (c *Coordinator) SetDecoder(d decode.Decoder) {
	if d == nil {
		return
	}
	c.decoder = d
	if c.worker != nil {
		c.worker.SetDecoder(d)
	}
}

// Decoder returns the current decoder.
func (c *Coordinator) Decoder() decode.Decoder { return c.decoder }

// LatestFrame returns the newest frame of the active session, if any.
func (c *Coordinator) LatestFrame() capture.FrameSnapshot {
	if c.source == nil {
		return capture.FrameSnapshot{}
	}
	return c.source.LatestFrame()
}

// CaptureStats reports the active source's statistics.
func (c *Coordinator) CaptureStats() (capture.CaptureStats, bool) {
	if c.source == nil {
		return capture.CaptureStats{}, false
	}
	return c.source.Stats(), true
}

// Layout returns where the preview goes inside a widget of the given size.
// The placement is recomputed when the bounds change or until it has been
// computed once with known preview geometry.
func (c *Coordinator) Layout(bounds image.Point) image.Rectangle {
	if bounds != c.lastBounds || !c.layoutWithPreview {
		c.lastBounds = bounds
		c.lastRect = PlacePreview(bounds, c.preview, c.hasPreview, c.opts.MirrorLayout)
		c.layoutWithPreview = c.hasPreview
	}
	return c.lastRect
}

func (c *Coordinator) startSession() error {
	if c.source != nil || c.worker != nil {
		c.warn("session start requested twice")
		return nil
	}
	src, err := c.openSource()
	if errors.Is(err, capture.ErrTargetUnavailable) {
		if c.logger != nil {
			c.logger.Debug("render target went away, waiting", "error", err)
		}
		c.awaitTarget()
		return nil
	}
	if err != nil {
		c.state = StateIdle
		c.publish()
		c.fatal(err)
		return err
	}
	id := uuid.New()
	events := c.events
	src.SetReadyHandler(func(size image.Point) {
		events.Post(Event{Kind: EventPreviewReady, Session: id, Geometry: size})
	})
	w := NewDecodeWorker(id, src, c.decoder, c.events, c.logger, c.opts.StopTimeout)
	c.source, c.worker, c.session, c.state = src, w, id, StateActive
	w.Start()
	if c.logger != nil {
		c.logger.Info("session started", "session", id.String())
	}
	c.publish()
	return nil
}

func (c *Coordinator) openSource() (capture.FrameSource, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.OpenAttempts; attempt++ {
		src, err := c.opener.Open(context.Background(), c.target)
		if err == nil {
			return src, nil
		}
		if errors.Is(err, capture.ErrTargetUnavailable) {
			return nil, err
		}
		lastErr = err
		if c.logger != nil {
			c.logger.Warn("frame source open failed", "attempt", attempt, "error", err)
		}
		if attempt < c.opts.OpenAttempts && c.opts.OpenBackoff > 0 {
			time.Sleep(c.opts.OpenBackoff)
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, lastErr)
}

func (c *Coordinator) onSurface(available bool) {
	c.events.Post(Event{Kind: EventSurfaceChanged, Available: available})
}

func (c *Coordinator) handle(ev Event) {
	switch ev.Kind {
	case EventCall:
		if ev.Call != nil {
			ev.Call()
		}
		return
	case EventSurfaceChanged:
		c.handleSurface(ev.Available)
	case EventDecodeSucceeded:
		if ev.Session != c.session || c.state != StateActive {
			return
		}
		c.succeeded++
		if c.mode == ModeNone || c.callback == nil {
			break
		}
		cb := c.callback
		if c.mode == ModeSingle {
			c.StopDecoding()
		}
		c.delivered++
		cb(ev.Result)
		if c.logger != nil {
			c.logger.Debug("decode succeeded", "format", ev.Result.Format, "sequence", ev.Result.Sequence)
		}
	case EventDecodeFailed:
		if ev.Session != c.session {
			return
		}
		c.failed++
	case EventPreviewReady:
		if ev.Session != c.session || c.state != StateActive {
			return
		}
		c.preview, c.hasPreview = ev.Geometry, true
		c.layoutWithPreview = false
		if c.logger != nil {
			c.logger.Debug("preview ready", "width", ev.Geometry.X, "height", ev.Geometry.Y)
		}
		if c.opts.OnLayout != nil {
			c.opts.OnLayout()
		}
	}
	c.publish()
}

func (c *Coordinator) handleSurface(available bool) {
	if !available {
		c.hasSurface = false
		return
	}
	if c.hasSurface {
		return
	}
	c.hasSurface = true
	if c.state == StateAwaitingTarget {
		_ = c.startSession()
	}
}

func (c *Coordinator) fatal(err error) {
	if c.logger != nil {
		c.logger.Error("scanner fatal", "error", err)
	}
	if c.opts.OnFatal != nil {
		c.opts.OnFatal(err)
	}
}

func (c *Coordinator) warn(msg string) {
	if c.logger != nil {
		c.logger.Warn(msg, "session", c.session.String())
	}
}

func (c *Coordinator) publish() {
	s := Status{
		State:      c.state.String(),
		Mode:       c.mode.String(),
		Surface:    c.hasSurface,
		Preview:    c.preview,
		HasPreview: c.hasPreview,
		Succeeded:  c.succeeded,
		Failed:     c.failed,
		Delivered:  c.delivered,
	}
	if c.session != uuid.Nil {
		s.Session = c.session.String()
	}
	c.status.Store(&s)
}

// IsFatal reports whether err should end the scanning session.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoRenderTarget) || errors.Is(err, ErrSourceUnavailable)
}
