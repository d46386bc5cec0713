package scanner

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/decode"
)

const defaultStopTimeout = 2 * time.Second

type decoderBox struct{ d decode.Decoder }

// DecodeWorker runs the decode loop of one session on its own goroutine.
// It only talks to the control side through the Dispatcher. A worker is
// single-use: after Stop a new one must be built.
type DecodeWorker struct {
	session     uuid.UUID
	source      capture.FrameSource
	events      *Dispatcher
	logger      *slog.Logger
	decoder     atomic.Pointer[decoderBox]
	stopTimeout time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
}

// NewDecodeWorker builds a worker for session. stopTimeout bounds Stop; zero
// selects a default.
func NewDecodeWorker(session uuid.UUID, source capture.FrameSource, dec decode.Decoder, events *Dispatcher, logger *slog.Logger, stopTimeout time.Duration) *DecodeWorker {
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &DecodeWorker{
		session:     session,
		source:      source,
		events:      events,
		logger:      logger,
		stopTimeout: stopTimeout,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	w.decoder.Store(&decoderBox{d: dec})
	return w
}

// SetDecoder swaps the decoder used from the next frame on.
func (w *DecodeWorker) SetDecoder(d decode.Decoder) { w.decoder.Store(&decoderBox{d: d}) }

// Start launches the loop. Calls after the first, or after Stop, do nothing.
func (w *DecodeWorker) Start() {
	w.startOnce.Do(func() {
		if w.ctx.Err() != nil {
			close(w.done)
			return
		}
		go w.run()
	})
}

// Stop cancels the loop and waits for it to exit, at most the stop timeout.
// It reports whether the goroutine was observed to terminate.
func (w *DecodeWorker) Stop() bool {
	w.cancel()
	w.startOnce.Do(func() { close(w.done) })
	timer := time.NewTimer(w.stopTimeout)
	defer timer.Stop()
	select {
	case <-w.done:
		return true
	case <-timer.C:
		if w.logger != nil {
			w.logger.Warn("decode worker did not stop in time", "session", w.session.String(), "timeout", w.stopTimeout)
		}
		return false
	}
}

// Done is closed when the loop has exited.
func (w *DecodeWorker) Done() <-chan struct{} { return w.done }

func (w *DecodeWorker) run() {
	defer close(w.done)
	defer func() {
		if r := recover(); r != nil && w.logger != nil {
			w.logger.Error("decode worker panic", "error", r, "stack", string(debug.Stack()))
		}
	}()

	var last uint64
	for {
		snap, err := w.source.NextFrame(w.ctx, last)
		if err != nil {
			if w.logger != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, capture.ErrSourceClosed) {
				w.logger.Warn("decode worker frame fetch", "error", err)
			}
			return
		}
		last = snap.Sequence

		var res decode.Result
		box := w.decoder.Load()
		if box == nil || box.d == nil {
			err = ErrNoDecoder
		} else {
			res, err = box.d.Decode(snap.Image)
		}
		if w.ctx.Err() != nil {
			return
		}
		if err != nil {
			if w.logger != nil && !errors.Is(err, decode.ErrNotFound) {
				w.logger.Debug("decode failed", "sequence", snap.Sequence, "error", err)
			}
			w.events.Post(Event{Kind: EventDecodeFailed, Session: w.session, Err: err})
			continue
		}
		res.Sequence = snap.Sequence
		if res.DecodedAt.IsZero() {
			res.DecodedAt = time.Now()
		}
		w.events.Post(Event{Kind: EventDecodeSucceeded, Session: w.session, Result: res})
	}
}
