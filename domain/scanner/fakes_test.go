package scanner

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/decode"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeSource hands out frames pushed by the test.
type fakeSource struct {
	mu      sync.Mutex
	latest  capture.FrameSnapshot
	updated chan struct{}
	closed  bool
	ready   func(image.Point)
	closes  int
	onClose func()
}

func newFakeSource() *fakeSource { return &fakeSource{updated: make(chan struct{})} }

func (s *fakeSource) push(w, h int) {
	s.mu.Lock()
	s.latest = capture.FrameSnapshot{
		Image:      image.NewRGBA(image.Rect(0, 0, w, h)),
		CapturedAt: time.Now(),
		Sequence:   s.latest.Sequence + 1,
	}
	close(s.updated)
	s.updated = make(chan struct{})
	s.mu.Unlock()
}

func (s *fakeSource) LatestFrame() capture.FrameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *fakeSource) NextFrame(ctx context.Context, after uint64) (capture.FrameSnapshot, error) {
	for {
		s.mu.Lock()
		latest, wait, closed := s.latest, s.updated, s.closed
		s.mu.Unlock()
		if latest.Sequence > after {
			return latest, nil
		}
		if closed {
			return capture.FrameSnapshot{}, capture.ErrSourceClosed
		}
		select {
		case <-ctx.Done():
			return capture.FrameSnapshot{}, ctx.Err()
		case <-wait:
		}
	}
}

func (s *fakeSource) PreviewSize() (image.Point, bool) { return image.Point{}, false }

func (s *fakeSource) SetReadyHandler(fn func(image.Point)) {
	s.mu.Lock()
	s.ready = fn
	s.mu.Unlock()
}

func (s *fakeSource) fireReady(p image.Point) {
	s.mu.Lock()
	fn := s.ready
	s.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

func (s *fakeSource) Stats() capture.CaptureStats { return capture.CaptureStats{} }

func (s *fakeSource) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.updated)
		s.updated = make(chan struct{})
	}
	s.closes++
	fn := s.onClose
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// fakeOpener records opens and the peak number of simultaneously open sources.
type fakeOpener struct {
	mu       sync.Mutex
	sources  []*fakeSource
	live     int
	peak     int
	failures int
	attempts int
}

func (o *fakeOpener) Open(ctx context.Context, target capture.Target) (capture.FrameSource, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attempts++
	if o.failures > 0 {
		o.failures--
		return nil, errors.New("camera busy")
	}
	if target == nil || !target.Available() {
		return nil, capture.ErrTargetUnavailable
	}
	src := newFakeSource()
	src.onClose = func() {
		o.mu.Lock()
		o.live--
		o.mu.Unlock()
	}
	o.sources = append(o.sources, src)
	o.live++
	if o.live > o.peak {
		o.peak = o.live
	}
	return src, nil
}

func (o *fakeOpener) last() *fakeSource {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sources) == 0 {
		return nil
	}
	return o.sources[len(o.sources)-1]
}

func (o *fakeOpener) counts() (opened, live, peak, attempts int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sources), o.live, o.peak, o.attempts
}

// countingDecoder labels each result with the frame width.
type countingDecoder struct {
	calls atomic.Int32
	fail  bool
}

func (d *countingDecoder) Decode(img image.Image) (decode.Result, error) {
	d.calls.Add(1)
	if d.fail {
		return decode.Result{}, decode.ErrNotFound
	}
	return decode.Result{Text: "w" + strconv.Itoa(img.Bounds().Dx()), Format: "fake"}, nil
}

type resultRecorder struct {
	mu  sync.Mutex
	got []decode.Result
}

func (r *resultRecorder) cb(res decode.Result) {
	r.mu.Lock()
	r.got = append(r.got, res)
	r.mu.Unlock()
}

func (r *resultRecorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, g := range r.got {
		out[i] = g.Text
	}
	return out
}

// pumpUntil drains the coordinator until cond holds or the timeout expires.
func pumpUntil(t *testing.T, c *Coordinator, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.Drain()
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for condition (status=%+v)", c.Status())
}

func newTestCoordinator(t *testing.T, opener capture.Opener, target RenderTarget, dec decode.Decoder) *Coordinator {
	t.Helper()
	if dec == nil {
		dec = &countingDecoder{}
	}
	c, err := NewCoordinator(Options{
		Logger:      discardLogger,
		Opener:      opener,
		Target:      target,
		Decoder:     dec,
		StopTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	return c
}

func availableSurface() *Surface {
	s := &Surface{}
	s.SetAvailable(true)
	return s
}
