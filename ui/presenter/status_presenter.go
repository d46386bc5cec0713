package presenter

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/scanner"
)

// StatusSource provides the coordinator snapshot and the live source's
// capture statistics. Both are read on the UI thread.
type StatusSource interface {
	Status() scanner.Status
	CaptureStats() (capture.CaptureStats, bool)
}

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatusPresenter mirrors the coordinator status into the state label,
// touching the view only when the text changes.
type StatusPresenter struct {
	src    StatusSource
	view   StateView
	latest string
}

func NewStatusPresenter(src StatusSource, view StateView) *StatusPresenter {
	return &StatusPresenter{src: src, view: view}
}

// Tick refreshes the label from the latest status.
func (p *StatusPresenter) Tick() {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	stats, ok := p.src.CaptureStats()
	text := FormatStatus(p.src.Status(), stats, ok)
	if text == p.latest {
		return
	}
	p.latest = text
	p.view.SetStateLabel(text)
}

// FormatStatus renders s for the state label, adding capture counters when
// a source is open.
func FormatStatus(s scanner.Status, stats capture.CaptureStats, open bool) string {
	text := fmt.Sprintf("State: %s | Mode: %s | Decoded: %s | Delivered: %s",
		s.State, s.Mode, humanize.Comma(int64(s.Succeeded)), humanize.Comma(int64(s.Delivered)))
	if open {
		text += fmt.Sprintf(" | Frames: %s (%s avg)",
			humanize.Comma(int64(stats.Captures)), stats.AvgCapture.Round(time.Millisecond))
	}
	return text
}
