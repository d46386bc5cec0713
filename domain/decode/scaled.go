package decode

import (
	"image"

	"github.com/disintegration/imaging"
)

// Scaled downsizes frames by scale before handing them to next and maps
// result points back to frame coordinates. A scale outside (0,1) is a no-op.
func Scaled(next Decoder, scale float64) Decoder {
	if next == nil || scale <= 0 || scale >= 1 {
		return next
	}
	return DecoderFunc(func(img image.Image) (Result, error) {
		if img == nil {
			return next.Decode(img)
		}
		b := img.Bounds()
		w := int(float64(b.Dx())*scale + 0.5)
		h := int(float64(b.Dy())*scale + 0.5)
		if w < 1 || h < 1 {
			return next.Decode(img)
		}
		small := imaging.Resize(img, w, h, imaging.Linear)
		res, err := next.Decode(small)
		if err != nil {
			return res, err
		}
		sx := float64(b.Dx()) / float64(w)
		sy := float64(b.Dy()) / float64(h)
		for i, p := range res.Points {
			res.Points[i] = image.Pt(b.Min.X+int(float64(p.X)*sx+0.5), b.Min.Y+int(float64(p.Y)*sy+0.5))
		}
		return res, nil
	})
}
