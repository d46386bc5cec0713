package capture

import (
	"image"
	"sync"
)

// Buffers for frames that are copied or converted (replayed images, camera
// mats, GDI bitmaps). Only frames that were never published come back
// through RecycleFrame: a published frame may still be held by the decoder.

var framePool sync.Pool // stores *image.RGBA

// acquireFrame returns an RGBA image sized to rect with Stride width*4.
func acquireFrame(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := framePool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		img = &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	} else {
		img.Stride = w * 4
		img.Rect = rect
		img.Pix = img.Pix[:needed]
	}
	return img
}

// RecycleFrame returns a frame nobody references any more to the pool.
func RecycleFrame(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	framePool.Put(img)
}
