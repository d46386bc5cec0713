package scanner

import (
	"image"

	"github.com/google/uuid"

	"github.com/soocke/pixel-scan-go/domain/decode"
)

// EventKind tags an Event.
type EventKind int

const (
	EventDecodeSucceeded EventKind = iota + 1
	EventDecodeFailed
	EventPreviewReady
	EventSurfaceChanged
	EventCall
)

func (k EventKind) String() string {
	switch k {
	case EventDecodeSucceeded:
		return "decode-success"
	case EventDecodeFailed:
		return "decode-failure"
	case EventPreviewReady:
		return "geometry-ready"
	case EventSurfaceChanged:
		return "surface-changed"
	case EventCall:
		return "call"
	default:
		return "unknown"
	}
}

// Event is one message crossing onto the control goroutine. Session stamps
// decode and geometry events with the session that produced them.
type Event struct {
	Kind      EventKind
	Session   uuid.UUID
	Result    decode.Result
	Err       error
	Geometry  image.Point
	Available bool
	Call      func()
}
