package model

import (
	"time"
)

// SessionModel tracks how long the scanner has been active in the current
// session and across all sessions since start. The zero value is ready to use.
type SessionModel struct {
	active      bool
	startedAt   time.Time
	current     time.Duration
	accumulated time.Duration
	sessions    int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick advances the model from the scanner's active flag at now.
func (m *SessionModel) OnTick(scanning bool, now time.Time) {
	if m == nil {
		return
	}
	switch {
	case scanning && !m.active:
		m.active = true
		m.startedAt = now
		m.current = 0
		m.sessions++
	case scanning:
		m.current = now.Sub(m.startedAt)
	case m.active:
		m.current = now.Sub(m.startedAt)
		m.accumulated += m.current
		m.active = false
	}
}

// Values returns the current (or last) session duration and the total. The
// total includes the ongoing session when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.current
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// Sessions returns how many sessions have been started.
func (m *SessionModel) Sessions() int {
	if m == nil {
		return 0
	}
	return m.sessions
}
