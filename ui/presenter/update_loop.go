package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// Each Tick drains the scanner's event queue first so results and layout
// changes are reflected in the same pass, then refreshes the views and
// invokes the scheduler callback. The zero value is usable (methods are
// nil-safe).
type Loop struct {
	Dispatch   func() int
	Visibility *VisibilityWatcher
	Status     *StatusPresenter
	Session    *SessionPresenter
	Preview    *PreviewPresenter
	Schedule   func()
}

func NewLoop(dispatch func() int, vis *VisibilityWatcher, status *StatusPresenter, sess *SessionPresenter, preview *PreviewPresenter, schedule func()) *Loop {
	return &Loop{Dispatch: dispatch, Visibility: vis, Status: status, Session: sess, Preview: preview, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	l.Visibility.Tick(now)
	if l.Dispatch != nil {
		l.Dispatch()
	}
	l.Status.Tick()
	l.Session.Tick(now)
	l.Preview.ProcessFrame()
	if l.Schedule != nil {
		l.Schedule()
	}
}
