package capture

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

const captureStatsLogInterval = 5 * time.Second

type captureService struct {
	running  atomic.Bool
	latest   atomic.Pointer[FrameSnapshot]
	grabber  Grabber
	interval time.Duration
	logger   *slog.Logger
	done     chan struct{}

	captures     atomic.Uint64
	skipped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64

	// updated is closed and replaced on every published frame and on stop.
	mu      sync.Mutex
	updated chan struct{}

	readyMu    sync.Mutex
	ready      func(image.Point)
	readyFired bool
	size       image.Point
	sizeKnown  bool

	closeOnce sync.Once
	onClose   func()
}

func newCaptureService(logger *slog.Logger, grabber Grabber, interval time.Duration) *captureService {
	if interval <= 0 {
		interval = 200 * time.Microsecond
	}
	return &captureService{
		grabber:  grabber,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
		updated:  make(chan struct{}),
	}
}

func (s *captureService) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *captureService) NextFrame(ctx context.Context, after uint64) (FrameSnapshot, error) {
	for {
		s.mu.Lock()
		wait := s.updated
		s.mu.Unlock()

		if snap := s.latest.Load(); snap != nil && snap.Sequence > after {
			return *snap, nil
		}
		if !s.running.Load() {
			return FrameSnapshot{}, ErrSourceClosed
		}
		select {
		case <-ctx.Done():
			return FrameSnapshot{}, ctx.Err()
		case <-wait:
		}
	}
}

func (s *captureService) PreviewSize() (image.Point, bool) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	return s.size, s.sizeKnown
}

// SetReadyHandler registers fn to be called once with the preview size. If
// the size is already known fn is called immediately.
func (s *captureService) SetReadyHandler(fn func(image.Point)) {
	s.readyMu.Lock()
	s.ready = fn
	fire := fn != nil && s.sizeKnown && !s.readyFired
	if fire {
		s.readyFired = true
	}
	size := s.size
	s.readyMu.Unlock()
	if fire {
		fn(size)
	}
}

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	skipped := s.skipped.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	var frameBytes uint64
	if snapshot.Image != nil {
		frameBytes = uint64(len(snapshot.Image.Pix))
	}
	return CaptureStats{
		Captures:         captures,
		Skipped:          skipped,
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snapshot.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
		FrameBytes:       frameBytes,
	}
}

func (s *captureService) start() {
	if s.running.Load() {
		return
	}
	s.running.Store(true)
	go s.loop()
}

// Close stops the capture loop and waits for it to exit. Safe to call twice.
func (s *captureService) Close() error {
	s.closeOnce.Do(func() {
		wasRunning := s.running.Swap(false)
		s.wake()
		if wasRunning {
			<-s.done
		}
		if c, ok := s.grabber.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil && s.logger != nil {
				s.logger.Warn("grabber close", "error", err)
			}
		}
		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}

func (s *captureService) wake() {
	s.mu.Lock()
	close(s.updated)
	s.updated = make(chan struct{})
	s.mu.Unlock()
}

func (s *captureService) loop() {
	defer close(s.done)
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	for s.running.Load() {
		start := time.Now()
		img, err := s.grabber.Grab()
		if err != nil && s.logger != nil {
			s.logger.Error("capture grab", "error", err)
		}
		if img == nil || img.Rect.Empty() {
			s.skipped.Add(1)
			time.Sleep(1 * time.Millisecond)
			continue
		}
		if !s.running.Load() {
			RecycleFrame(img)
			return
		}

		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		seq := s.sequence.Add(1)
		s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})
		s.wake()
		s.noteSize(img.Rect.Size())

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}

		time.Sleep(s.interval)
	}
}

func (s *captureService) noteSize(size image.Point) {
	s.readyMu.Lock()
	if s.sizeKnown {
		s.readyMu.Unlock()
		return
	}
	s.size, s.sizeKnown = size, true
	fn := s.ready
	fire := fn != nil && !s.readyFired
	if fire {
		s.readyFired = true
	}
	s.readyMu.Unlock()
	if fire {
		fn(size)
	}
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", humanize.Comma(int64(stats.Captures)),
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
		"frame_size", humanize.Bytes(stats.FrameBytes),
	)
}
