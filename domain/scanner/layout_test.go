package scanner

import (
	"image"
	"testing"
)

func TestPlacePreview_TallWidgetLetterboxes(t *testing.T) {
	got := PlacePreview(image.Pt(100, 200), image.Pt(4, 3), true, false)
	want := image.Rect(0, 62, 100, 137)
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
	// 100x75 keeps the 4:3 ratio.
	if got.Dx()*3 != got.Dy()*4 {
		t.Fatalf("ratio not preserved: %v", got)
	}
	if top, bottom := got.Min.Y, 200-got.Max.Y; top-bottom > 1 || bottom-top > 1 {
		t.Fatalf("not centered vertically: top=%d bottom=%d", top, bottom)
	}
}

func TestPlacePreview_WideWidgetCentersHorizontally(t *testing.T) {
	got := PlacePreview(image.Pt(400, 100), image.Pt(4, 3), true, false)
	// 133x100 centered in 400.
	want := image.Rect(133, 0, 266, 100)
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestPlacePreview_MirrorFills(t *testing.T) {
	got := PlacePreview(image.Pt(100, 200), image.Pt(4, 3), true, true)
	want := image.Rect(-83, 0, 183, 200)
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestPlacePreview_UnknownGeometryUsesBounds(t *testing.T) {
	want := image.Rect(0, 0, 100, 200)
	if got := PlacePreview(image.Pt(100, 200), image.Point{}, false, false); got != want {
		t.Fatalf("unknown: got %v want %v", got, want)
	}
	if got := PlacePreview(image.Pt(100, 200), image.Pt(0, 3), true, false); got != want {
		t.Fatalf("degenerate: got %v want %v", got, want)
	}
}
