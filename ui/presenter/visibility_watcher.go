package presenter

import (
	"log/slog"
	"time"
)

// SurfaceSetter receives the settled visibility of the preview widget.
type SurfaceSetter interface {
	SetAvailable(bool)
}

// VisibilityWatcher turns bursts of window map/unmap notifications into a
// single availability change once the window has been in the new state for
// the settle interval. OnMap, OnUnmap and Tick run on the UI thread.
type VisibilityWatcher struct {
	surface  SurfaceSetter
	logger   *slog.Logger
	settle   time.Duration
	applied  bool
	known    bool
	pending  bool
	changeAt time.Time
}

// NewVisibilityWatcher constructs a watcher; settle <= 0 applies changes on
// the next Tick.
func NewVisibilityWatcher(surface SurfaceSetter, logger *slog.Logger, settle time.Duration) *VisibilityWatcher {
	return &VisibilityWatcher{surface: surface, logger: logger, settle: settle}
}

// OnMap records that the window became visible at now.
func (w *VisibilityWatcher) OnMap(now time.Time) { w.note(true, now) }

// OnUnmap records that the window was hidden or iconified at now.
func (w *VisibilityWatcher) OnUnmap(now time.Time) { w.note(false, now) }

func (w *VisibilityWatcher) note(visible bool, now time.Time) {
	if w == nil {
		return
	}
	if visible != w.pending || !w.known {
		w.changeAt = now
	}
	w.pending = visible
	w.known = true
}

// Tick applies the pending state once it has settled. Only changes reach
// the surface.
func (w *VisibilityWatcher) Tick(now time.Time) {
	if w == nil || w.surface == nil || !w.known {
		return
	}
	if w.pending == w.applied || now.Sub(w.changeAt) < w.settle {
		return
	}
	w.applied = w.pending
	w.surface.SetAvailable(w.applied)
	if w.logger != nil {
		w.logger.Debug("preview visibility", "available", w.applied)
	}
}
