package images

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrNoPoints is returned by ResultROI when the result carries no points.
var ErrNoPoints = errors.New("no result points")

// ResultROI crops the bounding box of points, grown by pad on every side and
// clamped to the frame. The rectangle is in frame coordinates.
func ResultROI(frame image.Image, points []image.Point, pad int) (*image.NRGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	if len(points) == 0 {
		return nil, image.Rectangle{}, ErrNoPoints
	}
	if pad < 0 {
		pad = 0
	}
	r := image.Rectangle{Min: points[0], Max: points[0].Add(image.Pt(1, 1))}
	for _, p := range points[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	r = r.Inset(-pad).Intersect(frame.Bounds())
	if r.Empty() {
		return nil, image.Rectangle{}, errors.New("result outside frame")
	}
	return imaging.Crop(frame, r), r, nil
}
