package headless

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"golang.design/x/clipboard"

	"github.com/soocke/pixel-scan-go/domain/decode"
)

// Sink receives every delivered result.
type Sink interface {
	Publish(res decode.Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(decode.Result) error

func (f SinkFunc) Publish(res decode.Result) error { return f(res) }

// JSONLines writes one JSON object per result.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLines(w io.Writer) *JSONLines { return &JSONLines{enc: json.NewEncoder(w)} }

func (j *JSONLines) Publish(res decode.Result) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(res)
}

// Clipboard copies the decoded text to the system clipboard.
type Clipboard struct{}

// NewClipboard initialises the platform clipboard.
func NewClipboard() (*Clipboard, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("clipboard init: %w", err)
	}
	return &Clipboard{}, nil
}

func (*Clipboard) Publish(res decode.Result) error {
	clipboard.Write(clipboard.FmtText, []byte(res.Text))
	return nil
}

// multiSink publishes to every sink and returns the first error.
type multiSink []Sink

func (m multiSink) Publish(res decode.Result) error {
	var first error
	for _, s := range m {
		if err := s.Publish(res); err != nil && first == nil {
			first = err
		}
	}
	return first
}
