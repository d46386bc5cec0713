package decode

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Supported format names for NewMultiReader.
const (
	FormatQRCode     = "qr_code"
	FormatDataMatrix = "data_matrix"
	FormatCode128    = "code_128"
	FormatEAN13      = "ean_13"
	FormatEAN8       = "ean_8"
	FormatUPCA       = "upc_a"
	FormatUPCE       = "upc_e"
)

// DefaultFormats is used when no formats are configured.
var DefaultFormats = []string{FormatQRCode, FormatDataMatrix, FormatCode128, FormatEAN13}

type namedReader struct {
	name   string
	reader gozxing.Reader
}

// MultiReader tries each configured gozxing reader in order and returns the
// first hit.
type MultiReader struct {
	readers []namedReader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewMultiReader builds a reader for formats (see DefaultFormats).
func NewMultiReader(formats []string, tryHarder bool) (*MultiReader, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	m := &MultiReader{hints: map[gozxing.DecodeHintType]interface{}{}}
	if tryHarder {
		m.hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	seen := map[string]bool{}
	for _, f := range formats {
		name := strings.ToLower(strings.TrimSpace(f))
		if seen[name] {
			continue
		}
		seen[name] = true
		var r gozxing.Reader
		switch name {
		case FormatQRCode:
			r = qrcode.NewQRCodeReader()
		case FormatDataMatrix:
			r = datamatrix.NewDataMatrixReader()
		case FormatCode128:
			r = oned.NewCode128Reader()
		case FormatEAN13:
			r = oned.NewEAN13Reader()
		case FormatEAN8:
			r = oned.NewEAN8Reader()
		case FormatUPCA:
			r = oned.NewUPCAReader()
		case FormatUPCE:
			r = oned.NewUPCEReader()
		default:
			return nil, fmt.Errorf("unsupported barcode format %q", f)
		}
		m.readers = append(m.readers, namedReader{name: name, reader: r})
	}
	return m, nil
}

// Formats lists the enabled format names in try order.
func (m *MultiReader) Formats() []string {
	out := make([]string, 0, len(m.readers))
	for _, r := range m.readers {
		out = append(out, r.name)
	}
	return out
}

func (m *MultiReader) Decode(img image.Image) (Result, error) {
	if img == nil {
		return Result{}, ErrNotFound
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	var lastErr error
	for _, r := range m.readers {
		res, err := r.reader.Decode(bmp, m.hints)
		r.reader.Reset()
		if err != nil {
			lastErr = err
			continue
		}
		return fromZXing(res, r.name), nil
	}
	if lastErr != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNotFound, lastErr)
	}
	return Result{}, ErrNotFound
}

func fromZXing(res *gozxing.Result, format string) Result {
	out := Result{Text: res.GetText(), Format: format}
	for _, p := range res.GetResultPoints() {
		if p == nil {
			continue
		}
		out.Points = append(out.Points, image.Pt(int(math.Round(p.GetX())), int(math.Round(p.GetY()))))
	}
	return out
}
