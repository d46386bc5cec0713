package decode

import (
	"errors"
	"image"
	"time"
)

// ErrNotFound is the normal per-frame outcome when no barcode is visible.
var ErrNotFound = errors.New("no barcode found")

// Result is a successfully decoded barcode.
type Result struct {
	Text      string        `json:"text"`
	Format    string        `json:"format"`
	Points    []image.Point `json:"points,omitempty"`
	Sequence  uint64        `json:"sequence"`
	DecodedAt time.Time     `json:"decodedAt"`
}

// Decoder turns a frame into a Result. Implementations may be slow but must
// not mutate shared state; they are called from a single worker goroutine.
type Decoder interface {
	Decode(img image.Image) (Result, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(img image.Image) (Result, error)

func (f DecoderFunc) Decode(img image.Image) (Result, error) { return f(img) }
