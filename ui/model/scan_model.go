package model

import (
	"sync/atomic"

	"github.com/soocke/pixel-scan-go/domain/decode"
)

// ScanModel tracks whether the user has paused scanning and the last result
// handed to the UI. The zero value is running and usable. Concurrency-safe
// because the HTTP surface reads it off the control goroutine.
type ScanModel struct {
	paused atomic.Bool
	last   atomic.Pointer[decode.Result]
}

// Paused reports whether scanning was paused by the user.
func (m *ScanModel) Paused() bool {
	if m == nil {
		return false
	}
	return m.paused.Load()
}

// SetPaused stores the paused flag and reports whether it changed.
func (m *ScanModel) SetPaused(b bool) bool {
	if m == nil {
		return false
	}
	return m.paused.Swap(b) != b
}

// SetLast records the most recent delivered result.
func (m *ScanModel) SetLast(res decode.Result) {
	if m == nil {
		return
	}
	m.last.Store(&res)
}

// Last returns the most recent delivered result, if any.
func (m *ScanModel) Last() (decode.Result, bool) {
	if m == nil {
		return decode.Result{}, false
	}
	r := m.last.Load()
	if r == nil {
		return decode.Result{}, false
	}
	return *r, true
}
