package scanner

import (
	"errors"
	"image"
	"strings"

	"github.com/soocke/pixel-scan-go/domain/decode"
)

var (
	// ErrNoRenderTarget means the coordinator was asked to start a session
	// without a render target. It is a configuration error and is not retried.
	ErrNoRenderTarget = errors.New("no render target provided")
	// ErrSourceUnavailable means the frame source could not be opened after
	// the configured number of attempts.
	ErrSourceUnavailable = errors.New("frame source unavailable")
	// ErrNoOpener and ErrNoDecoder are returned by NewCoordinator.
	ErrNoOpener  = errors.New("frame source opener required")
	ErrNoDecoder = errors.New("decoder required")
)

// DecodeMode governs whether and how many results reach the callback.
type DecodeMode int

const (
	ModeNone DecodeMode = iota
	ModeSingle
	ModeContinuous
)

func (m DecodeMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSingle:
		return "single"
	case ModeContinuous:
		return "continuous"
	default:
		return "unknown"
	}
}

// ParseDecodeMode accepts the names produced by String.
func ParseDecodeMode(s string) (DecodeMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, true
	case "single":
		return ModeSingle, true
	case "continuous":
		return ModeContinuous, true
	}
	return ModeNone, false
}

// SessionState is the lifecycle axis of the coordinator.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingTarget
	StateActive
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingTarget:
		return "awaiting_target"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// ResultCallback receives decode results on the control goroutine.
type ResultCallback func(decode.Result)

// Status is a read-only snapshot of the coordinator, safe to read from any goroutine.
type Status struct {
	State      string      `json:"state"`
	Mode       string      `json:"mode"`
	Session    string      `json:"session,omitempty"`
	Surface    bool        `json:"surface"`
	Preview    image.Point `json:"preview"`
	HasPreview bool        `json:"hasPreview"`
	Succeeded  uint64      `json:"succeeded"`
	Failed     uint64      `json:"failed"`
	Delivered  uint64      `json:"delivered"`
}
