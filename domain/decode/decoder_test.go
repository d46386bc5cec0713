package decode

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/soocke/pixel-scan-go/config"
)

// qrImage renders text as a black-on-white QR code of roughly size x size pixels.
func qrImage(t *testing.T, text string, size int) image.Image {
	t.Helper()
	bm, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		t.Fatalf("encode qr: %v", err)
	}
	return matrixImage(bm)
}

func matrixImage(bm *gozxing.BitMatrix) image.Image {
	w, h := bm.GetWidth(), bm.GetHeight()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if bm.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func blank(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func TestMultiReader_DecodesQRCode(t *testing.T) {
	r, err := NewMultiReader(nil, true)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	res, err := r.Decode(qrImage(t, "hello scanner", 240))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if res.Text != "hello scanner" || res.Format != FormatQRCode {
		t.Fatalf("unexpected result text=%q format=%q", res.Text, res.Format)
	}
	if len(res.Points) == 0 {
		t.Fatalf("expected result points")
	}
}

func TestMultiReader_BlankFrameIsNotFound(t *testing.T) {
	r, err := NewMultiReader([]string{FormatQRCode}, false)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	if _, err := r.Decode(blank(120, 120)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
	if _, err := r.Decode(nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("nil image err=%v want ErrNotFound", err)
	}
}

func TestNewMultiReader_Formats(t *testing.T) {
	r, err := NewMultiReader([]string{"QR_CODE", "qr_code", " code_128 "}, false)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	got := r.Formats()
	if len(got) != 2 || got[0] != FormatQRCode || got[1] != FormatCode128 {
		t.Fatalf("formats=%v", got)
	}
	all := []string{FormatQRCode, FormatDataMatrix, FormatCode128, FormatEAN13, FormatEAN8, FormatUPCA, FormatUPCE}
	if r, err := NewMultiReader(all, false); err != nil || len(r.Formats()) != len(all) {
		t.Fatalf("all formats: %v", err)
	}
	if _, err := NewMultiReader([]string{"aztec"}, false); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestScaled_MapsPointsBack(t *testing.T) {
	var seen image.Rectangle
	inner := DecoderFunc(func(img image.Image) (Result, error) {
		seen = img.Bounds()
		return Result{Text: "x", Points: []image.Point{{X: 10, Y: 5}}}, nil
	})
	dec := Scaled(inner, 0.5)
	res, err := dec.Decode(blank(200, 100))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if seen.Dx() != 100 || seen.Dy() != 50 {
		t.Fatalf("inner saw %v want 100x50", seen)
	}
	if res.Points[0] != image.Pt(20, 10) {
		t.Fatalf("point=%v want (20,10)", res.Points[0])
	}
	if Scaled(inner, 1) == nil || Scaled(nil, 0.5) != nil {
		t.Fatalf("unexpected passthrough behaviour")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Formats = []string{"qr_code"}
	cfg.AnalysisScale = 0.5
	d, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	res, err := d.Decode(qrImage(t, "scaled config", 400))
	if err != nil || res.Text != "scaled config" {
		t.Fatalf("decode=%+v err=%v", res, err)
	}

	cfg.Formats = []string{"aztec"}
	if _, err := FromConfig(cfg); err == nil {
		t.Fatalf("unsupported format should fail")
	}
}

func TestMultiReader_DecodesEANAndUPC(t *testing.T) {
	cases := []struct {
		format string
		text   string
		encode func() (*gozxing.BitMatrix, error)
	}{
		{FormatEAN8, "96385074", func() (*gozxing.BitMatrix, error) {
			return oned.NewEAN8Writer().Encode("96385074", gozxing.BarcodeFormat_EAN_8, 240, 80, nil)
		}},
		{FormatUPCA, "036000291452", func() (*gozxing.BitMatrix, error) {
			return oned.NewUPCAWriter().Encode("036000291452", gozxing.BarcodeFormat_UPC_A, 300, 80, nil)
		}},
	}
	for _, tc := range cases {
		bm, err := tc.encode()
		if err != nil {
			t.Fatalf("encode %s: %v", tc.format, err)
		}
		r, err := NewMultiReader([]string{tc.format}, true)
		if err != nil {
			t.Fatalf("new reader %s: %v", tc.format, err)
		}
		res, err := r.Decode(matrixImage(bm))
		if err != nil {
			t.Fatalf("decode %s: %v", tc.format, err)
		}
		if res.Text != tc.text || res.Format != tc.format {
			t.Fatalf("format=%s got text=%q format=%q", tc.format, res.Text, res.Format)
		}
	}
}
