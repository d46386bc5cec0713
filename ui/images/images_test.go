package images

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestScaleToFit(t *testing.T) {
	src := solid(400, 200, color.NRGBA{255, 0, 0, 255})
	got := ScaleToFit(src, 100, 100)
	if b := got.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Fatalf("scaled bounds=%v want 100x50", b)
	}
	small := solid(10, 10, color.NRGBA{})
	if ScaleToFit(small, 100, 100) != image.Image(small) {
		t.Fatalf("image that fits should be returned unchanged")
	}
}

func TestCompose_Letterbox(t *testing.T) {
	frame := solid(4, 3, color.NRGBA{255, 255, 255, 255})
	out := Compose(frame, image.Pt(100, 200), image.Rect(0, 62, 100, 137))
	if out.Bounds() != image.Rect(0, 0, 100, 200) {
		t.Fatalf("canvas bounds=%v", out.Bounds())
	}
	if c := out.NRGBAAt(50, 10); c.R != 0 || c.A != 255 {
		t.Fatalf("bar pixel=%v want opaque black", c)
	}
	if c := out.NRGBAAt(50, 100); c.R != 255 {
		t.Fatalf("preview pixel=%v want white", c)
	}
}

func TestCompose_CropsOverflow(t *testing.T) {
	frame := solid(4, 3, color.NRGBA{0, 255, 0, 255})
	out := Compose(frame, image.Pt(100, 200), image.Rect(-83, 0, 183, 200))
	if c := out.NRGBAAt(0, 0); c.G != 255 {
		t.Fatalf("cropped fill pixel=%v want green", c)
	}
}

func TestResultROI(t *testing.T) {
	frame := solid(50, 40, color.NRGBA{1, 2, 3, 255})
	pts := []image.Point{{10, 10}, {20, 10}, {10, 20}}
	roi, r, err := ResultROI(frame, pts, 5)
	if err != nil {
		t.Fatalf("roi: %v", err)
	}
	if r != image.Rect(5, 5, 26, 26) {
		t.Fatalf("rect=%v want (5,5)-(26,26)", r)
	}
	if roi.Bounds().Dx() != r.Dx() || roi.Bounds().Dy() != r.Dy() {
		t.Fatalf("roi bounds=%v rect=%v", roi.Bounds(), r)
	}
	if _, r, _ := ResultROI(frame, []image.Point{{48, 38}}, 10); r.Max != image.Pt(50, 40) {
		t.Fatalf("edge roi not clamped: %v", r)
	}
	if _, _, err := ResultROI(frame, nil, 1); !errors.Is(err, ErrNoPoints) {
		t.Fatalf("err=%v want ErrNoPoints", err)
	}
}

func TestEncodePNG(t *testing.T) {
	if b := EncodePNG(Placeholder(3, 2)); len(b) < 8 || string(b[1:4]) != "PNG" {
		t.Fatalf("not a png: %x", b)
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}
