// Package headless runs the scanner without a window: the render target is
// always available, results go to sinks and control comes from HTTP.
package headless

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/decode"
	"github.com/soocke/pixel-scan-go/domain/scanner"
	"github.com/soocke/pixel-scan-go/httpapi"
	"github.com/soocke/pixel-scan-go/ui/model"
)

// ErrStopped is returned by control calls once the runner has shut down.
var ErrStopped = errors.New("runner stopped")

const shutdownTimeout = 3 * time.Second

// Options overrides parts of what New builds from the config.
type Options struct {
	Opener  capture.Opener
	Decoder decode.Decoder
	Sinks   []Sink
	// ExitAfterSingle ends Run after the first result in single mode.
	ExitAfterSingle bool
}

// Runner owns a coordinator bound to an always-available surface.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	surface *scanner.Surface
	coord   *scanner.Coordinator
	history *model.ResultHistory
	scan    *model.ScanModel
	sink    Sink
	opts    Options

	fatal chan error
	done  chan struct{}
}

// New builds a runner. Opener and decoder default to the configured source
// and formats.
func New(cfg *config.Config, logger *slog.Logger, opts Options) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	r := &Runner{
		cfg:     cfg,
		logger:  logger,
		surface: &scanner.Surface{},
		scan:    &model.ScanModel{},
		sink:    multiSink(opts.Sinks),
		opts:    opts,
		fatal:   make(chan error, 1),
		done:    make(chan struct{}),
	}
	var err error
	if r.history, err = model.NewResultHistory(cfg.HistorySize); err != nil {
		return nil, fmt.Errorf("result history: %w", err)
	}
	opener := opts.Opener
	if opener == nil {
		factory, err := capture.NewGrabberFactory(cfg, nil)
		if err != nil {
			return nil, err
		}
		opener = capture.NewOpener(logger, capture.OpenerConfig{
			NewGrabber: factory,
			Interval:   time.Duration(cfg.CaptureIntervalMs) * time.Millisecond,
		})
	}
	dec := opts.Decoder
	if dec == nil {
		if dec, err = decode.FromConfig(cfg); err != nil {
			return nil, err
		}
	}
	r.coord, err = scanner.NewCoordinator(scanner.Options{
		Logger:       logger,
		Opener:       opener,
		Target:       r.surface,
		Decoder:      dec,
		StopTimeout:  time.Duration(cfg.StopTimeoutMs) * time.Millisecond,
		OpenAttempts: cfg.OpenAttempts,
		OpenBackoff:  time.Duration(cfg.OpenBackoffMs) * time.Millisecond,
		MirrorLayout: cfg.MirrorLayout,
		OnFatal:      r.onFatal,
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Coordinator exposes the underlying coordinator, mainly for tests.
func (r *Runner) Coordinator() *scanner.Coordinator { return r.coord }

// History returns the result history shared with the HTTP surface.
func (r *Runner) History() *model.ResultHistory { return r.history }

// Run resumes the session, arms the configured mode, serves HTTP when an
// address is configured and dispatches events until ctx ends, a fatal error
// occurs or a single scan completes with ExitAfterSingle.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	r.surface.SetAvailable(true)
	r.coord.Invoke(func() {
		if err := r.coord.Resume(); err != nil {
			return
		}
		mode, _ := scanner.ParseDecodeMode(r.cfg.DecodeMode)
		r.arm(mode, func() { cancel(nil) })
	})

	var srv *http.Server
	if r.cfg.HTTPAddr != "" {
		srv = &http.Server{Addr: r.cfg.HTTPAddr, Handler: httpapi.NewRouter(r, r.logger), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if r.logger != nil {
				r.logger.Info("http listening", "addr", srv.Addr)
			}
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				cancel(fmt.Errorf("http: %w", err))
			}
		}()
	}
	go func() {
		select {
		case err := <-r.fatal:
			cancel(err)
		case <-ctx.Done():
		}
	}()

	err := r.coord.Run(ctx)
	r.coord.Close()
	r.coord.Events().Close()
	r.surface.SetAvailable(false)
	if srv != nil {
		sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = srv.Shutdown(sctx)
		scancel()
	}
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// arm sets the decode mode. onSingle runs after the single result was
// published when the runner should exit.
func (r *Runner) arm(mode scanner.DecodeMode, onSingle func()) {
	switch mode {
	case scanner.ModeSingle:
		r.coord.DecodeSingle(func(res decode.Result) {
			r.deliver(res)
			if r.opts.ExitAfterSingle && onSingle != nil {
				onSingle()
			}
		})
	case scanner.ModeContinuous:
		r.coord.DecodeContinuous(r.deliver)
	default:
		r.coord.StopDecoding()
	}
}

func (r *Runner) deliver(res decode.Result) {
	r.scan.SetLast(res)
	e, _ := r.history.Add(res)
	if r.logger != nil {
		r.logger.Info("scan result", "format", res.Format, "text", res.Text, "seen", e.Count)
	}
	if err := r.sink.Publish(res); err != nil && r.logger != nil {
		r.logger.Warn("publish result", "error", err)
	}
}

func (r *Runner) onFatal(err error) {
	select {
	case r.fatal <- err:
	default:
	}
}

// call runs fn on the control goroutine and waits for it.
func (r *Runner) call(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	if !r.coord.Invoke(func() { errc <- fn() }) {
		return ErrStopped
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrStopped
	}
}

func (r *Runner) Status() scanner.Status { return r.coord.Status() }

func (r *Runner) Results() []model.HistoryEntry { return r.history.Entries() }

func (r *Runner) Latest() (model.HistoryEntry, error) {
	entries := r.history.Entries()
	if len(entries) == 0 {
		return model.HistoryEntry{}, httpapi.ErrNoResult
	}
	return entries[0], nil
}

func (r *Runner) ScanSingle(ctx context.Context) error {
	return r.call(ctx, func() error { r.arm(scanner.ModeSingle, nil); return nil })
}

func (r *Runner) ScanContinuous(ctx context.Context) error {
	return r.call(ctx, func() error { r.arm(scanner.ModeContinuous, nil); return nil })
}

func (r *Runner) StopScanning(ctx context.Context) error {
	return r.call(ctx, func() error { r.coord.StopDecoding(); return nil })
}

func (r *Runner) Resume(ctx context.Context) error {
	return r.call(ctx, func() error {
		r.scan.SetPaused(false)
		return r.coord.Resume()
	})
}

func (r *Runner) Pause(ctx context.Context) error {
	return r.call(ctx, func() error {
		r.scan.SetPaused(true)
		r.coord.Pause()
		return nil
	})
}

var _ httpapi.Service = (*Runner)(nil)
