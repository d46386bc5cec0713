package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/pixel-scan-go/config"
)

type alwaysTarget struct{ ok bool }

func (t alwaysTarget) Available() bool { return t.ok }

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func staticOpener() Opener {
	return NewOpener(nil, OpenerConfig{
		NewGrabber: func() (Grabber, error) {
			return NewStaticGrabber(solid(4, 3, color.RGBA{255, 0, 0, 255})), nil
		},
		Interval: time.Millisecond,
	})
}

func TestOpener_SingleLiveSource(t *testing.T) {
	o := staticOpener()
	src, err := o.Open(context.Background(), alwaysTarget{ok: true})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := o.Open(context.Background(), alwaysTarget{ok: true}); !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("second open err=%v want ErrAlreadyOpen", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	again, err := o.Open(context.Background(), alwaysTarget{ok: true})
	if err != nil {
		t.Fatalf("reopen after close failed: %v", err)
	}
	_ = again.Close()
}

func TestOpener_TargetUnavailable(t *testing.T) {
	o := staticOpener()
	if _, err := o.Open(context.Background(), alwaysTarget{ok: false}); !errors.Is(err, ErrTargetUnavailable) {
		t.Fatalf("err=%v want ErrTargetUnavailable", err)
	}
	if _, err := o.Open(context.Background(), nil); !errors.Is(err, ErrTargetUnavailable) {
		t.Fatalf("nil target err=%v want ErrTargetUnavailable", err)
	}
}

func TestCaptureService_NextFrameAdvances(t *testing.T) {
	o := staticOpener()
	src, err := o.Open(context.Background(), alwaysTarget{ok: true})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	first, err := src.NextFrame(ctx, 0)
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	second, err := src.NextFrame(ctx, first.Sequence)
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if second.Sequence <= first.Sequence {
		t.Fatalf("sequence did not advance: first=%d second=%d", first.Sequence, second.Sequence)
	}
	if second.Image == nil || second.Image.Rect.Dx() != 4 || second.Image.Rect.Dy() != 3 {
		t.Fatalf("unexpected frame bounds: %+v", second.Image)
	}
	if st := src.Stats(); st.Captures == 0 {
		t.Fatalf("expected captures in stats, got %+v", st)
	}
}

func TestCaptureService_CloseWakesWaiters(t *testing.T) {
	block := make(chan struct{})
	s := newCaptureService(nil, GrabberFunc(func() (*image.RGBA, error) {
		<-block
		return nil, nil
	}), time.Millisecond)
	s.start()

	errc := make(chan error, 1)
	go func() {
		_, err := s.NextFrame(context.Background(), 0)
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	close(block)
	_ = s.Close()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrSourceClosed) {
			t.Fatalf("err=%v want ErrSourceClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("waiter not released by Close")
	}
}

func TestCaptureService_ReadyHandlerFiresOnce(t *testing.T) {
	o := staticOpener()
	src, err := o.Open(context.Background(), alwaysTarget{ok: true})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer src.Close()

	var calls atomic.Int32
	sizes := make(chan image.Point, 4)
	src.SetReadyHandler(func(p image.Point) {
		calls.Add(1)
		sizes <- p
	})
	select {
	case p := <-sizes:
		if p != image.Pt(4, 3) {
			t.Fatalf("ready size=%v want 4x3", p)
		}
	case <-time.After(time.Second):
		t.Fatalf("ready handler never fired")
	}
	time.Sleep(20 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Fatalf("ready handler calls=%d want 1", n)
	}
	if p, ok := src.PreviewSize(); !ok || p != image.Pt(4, 3) {
		t.Fatalf("PreviewSize=%v,%v", p, ok)
	}
}

func TestParseDeviceIndex(t *testing.T) {
	if n, err := parseDeviceIndex(" 2 "); err != nil || n != 2 {
		t.Fatalf("parseDeviceIndex=%d,%v", n, err)
	}
	if _, err := parseDeviceIndex("/dev/video0"); err == nil {
		t.Fatalf("expected error for device path")
	}
}

func TestNewGrabberFactory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source = config.SourceImages
	if _, err := NewGrabberFactory(cfg, nil); err == nil {
		t.Fatalf("image source without dir should fail")
	}

	dir := t.TempDir()
	if err := imaging.Save(solid(6, 4, color.RGBA{0, 0, 255, 255}), filepath.Join(dir, "a.png")); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	cfg.ImageDir = dir
	factory, err := NewGrabberFactory(cfg, nil)
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	g, err := factory()
	if err != nil {
		t.Fatalf("grabber: %v", err)
	}
	img, err := g.Grab()
	if err != nil || img == nil || img.Rect.Dx() != 6 || img.Rect.Dy() != 4 {
		t.Fatalf("grab=%v err=%v", img, err)
	}

	cfg.Source = config.SourceCamera
	if _, err := NewGrabberFactory(cfg, nil); !CameraAvailable && !errors.Is(err, ErrCameraUnsupported) {
		t.Fatalf("camera without gocv err=%v", err)
	}
}

func TestFramePool_AcquireAfterRecycle(t *testing.T) {
	first := acquireFrame(image.Rect(0, 0, 8, 8))
	RecycleFrame(first)
	// sync.Pool may drop entries, so only the shape is guaranteed.
	next := acquireFrame(image.Rect(0, 0, 4, 2))
	if next.Stride != 16 || len(next.Pix) != 32 || next.Rect != image.Rect(0, 0, 4, 2) {
		t.Fatalf("acquired frame stride=%d len=%d rect=%v", next.Stride, len(next.Pix), next.Rect)
	}
	empty := acquireFrame(image.Rect(0, 0, 0, 5))
	if len(empty.Pix) != 0 {
		t.Fatalf("empty rect frame has %d bytes", len(empty.Pix))
	}
}
