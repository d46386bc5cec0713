package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows time spent scanning.
type SessionStats interface {
	SetSession(session, total time.Duration, sessions int)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
}

// NewSessionStats creates the session and total labels at (row, startCol)
// and (row, startCol+1), inside parent when it is non-nil.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(16)), totalLbl: Label(Width(20))}
	for i, lbl := range []*LabelWidget{s.sessionLbl, s.totalLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.SetSession(0, 0, 0)
	return s
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates both labels.
func (s *sessionStats) SetSession(session, total time.Duration, sessions int) {
	if s == nil || s.sessionLbl == nil || s.totalLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Scanning: " + clock(session)))
	s.totalLbl.Configure(Txt(fmt.Sprintf("Total: %s (%d)", clock(total), sessions)))
}
