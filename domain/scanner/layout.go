package scanner

import "image"

// PlacePreview computes where a preview of size preview goes inside a widget
// of size bounds, preserving the preview's aspect ratio.
//
// When the widget is relatively wider than the preview, the preview is
// scaled to the widget height and centered horizontally; otherwise it is
// scaled to the widget width and centered vertically. mirror flips the
// branch, which yields a fill (cropped) placement instead of a letterbox.
// Without a known, non-degenerate preview size the full bounds are returned.
func PlacePreview(bounds, preview image.Point, known, mirror bool) image.Rectangle {
	width, height := bounds.X, bounds.Y
	full := image.Rect(0, 0, width, height)
	if !known || preview.X <= 0 || preview.Y <= 0 || width <= 0 || height <= 0 {
		return full
	}
	pw, ph := preview.X, preview.Y
	wider := width*ph > height*pw
	if mirror != wider {
		scaledWidth := pw * height / ph
		return image.Rect((width-scaledWidth)/2, 0, (width+scaledWidth)/2, height)
	}
	scaledHeight := ph * width / pw
	return image.Rect(0, (height-scaledHeight)/2, width, (height+scaledHeight)/2)
}
