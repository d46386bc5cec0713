package headless

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/decode"
	"github.com/soocke/pixel-scan-go/domain/scanner"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type recordSink struct {
	mu  sync.Mutex
	got []decode.Result
}

func (s *recordSink) Publish(res decode.Result) error {
	s.mu.Lock()
	s.got = append(s.got, res)
	s.mu.Unlock()
	return nil
}

func (s *recordSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func testConfig(mode string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.DecodeMode = mode
	cfg.CaptureIntervalMs = 1
	cfg.OpenBackoffMs = 1
	return cfg
}

func staticOpener() capture.Opener {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	img.Set(0, 0, color.White)
	return capture.NewOpener(nil, capture.OpenerConfig{
		NewGrabber: func() (capture.Grabber, error) { return capture.NewStaticGrabber(img), nil },
		Interval:   time.Millisecond,
	})
}

var helloDecoder = decode.DecoderFunc(func(image.Image) (decode.Result, error) {
	return decode.Result{Text: "hello", Format: "QR_CODE"}, nil
})

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestRunner_SingleExits(t *testing.T) {
	sink := &recordSink{}
	r, err := New(testConfig("single"), discardLogger(), Options{
		Opener: staticOpener(), Decoder: helloDecoder, Sinks: []Sink{sink}, ExitAfterSingle: true,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("run ended by timeout, not by the single result")
	}
	if n := sink.len(); n != 1 {
		t.Fatalf("published=%d want 1", n)
	}
	if e, err := r.Latest(); err != nil || e.Text != "hello" {
		t.Fatalf("latest=%+v err=%v", e, err)
	}
	if st := r.Status(); st.State != "idle" {
		t.Fatalf("state after run=%s want idle", st.State)
	}
}

func TestRunner_ControlCalls(t *testing.T) {
	sink := &recordSink{}
	r, err := New(testConfig("none"), discardLogger(), Options{
		Opener: staticOpener(), Decoder: helloDecoder, Sinks: []Sink{sink},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	waitFor(t, "active session", func() bool { return r.Status().State == "active" })
	time.Sleep(20 * time.Millisecond)
	if n := sink.len(); n != 0 {
		t.Fatalf("mode none published %d results", n)
	}

	cctx, ccancel := context.WithTimeout(context.Background(), time.Second)
	defer ccancel()
	if err := r.ScanContinuous(cctx); err != nil {
		t.Fatalf("scan continuous: %v", err)
	}
	waitFor(t, "continuous results", func() bool { return sink.len() >= 2 })
	if err := r.StopScanning(cctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := r.Pause(cctx); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if st := r.Status(); st.State != "idle" || st.Session != "" {
		t.Fatalf("after pause status=%+v", st)
	}
	if err := r.Resume(cctx); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if st := r.Status(); st.State != "active" {
		t.Fatalf("after resume state=%s", st.State)
	}
	if got := r.Results(); len(got) != 1 || got[0].Count < 2 {
		t.Fatalf("history=%+v want one entry seen repeatedly", got)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
	if err := r.Pause(cctx); !errors.Is(err, ErrStopped) {
		t.Fatalf("call after stop err=%v want ErrStopped", err)
	}
}

type failingOpener struct{}

func (failingOpener) Open(context.Context, capture.Target) (capture.FrameSource, error) {
	return nil, errors.New("device busy")
}

func TestRunner_FatalEndsRun(t *testing.T) {
	cfg := testConfig("continuous")
	cfg.OpenAttempts = 2
	r, err := New(cfg, discardLogger(), Options{Opener: failingOpener{}, Decoder: helloDecoder})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = r.Run(ctx)
	if !scanner.IsFatal(err) {
		t.Fatalf("run err=%v want fatal", err)
	}
}
