package images

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = imaging.Encode(&buf, img, imaging.PNG)
	return buf.Bytes()
}

// ScaleToFit scales src down so it fits within maxW x maxH preserving aspect
// ratio. If the source already fits, the original is returned.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	return imaging.Fit(src, maxW, maxH, imaging.Linear)
}

// Placeholder returns a blank w x h canvas shown before the first frame.
func Placeholder(w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return imaging.New(w, h, color.NRGBA{0x20, 0x20, 0x20, 0xff})
}

// Compose draws frame stretched to rect on a bounds-sized black canvas.
// Parts of rect outside the canvas are cropped.
func Compose(frame image.Image, bounds image.Point, rect image.Rectangle) *image.NRGBA {
	if bounds.X < 1 {
		bounds.X = 1
	}
	if bounds.Y < 1 {
		bounds.Y = 1
	}
	canvas := imaging.New(bounds.X, bounds.Y, color.NRGBA{0, 0, 0, 0xff})
	if frame == nil || rect.Dx() < 1 || rect.Dy() < 1 {
		return canvas
	}
	scaled := imaging.Resize(frame, rect.Dx(), rect.Dy(), imaging.Linear)
	return imaging.Paste(canvas, scaled, rect.Min)
}
