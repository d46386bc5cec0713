package presenter

import (
	"time"

	"github.com/soocke/pixel-scan-go/ui/model"
)

// ScanningModel reports whether a scanning session is active.
type ScanningModel interface{ Scanning() bool }

// ScanningFunc adapts a function to ScanningModel.
type ScanningFunc func() bool

func (f ScanningFunc) Scanning() bool { return f() }

// SessionView displays formatted session and total durations.
type SessionView interface {
	SetSession(session, total time.Duration, sessions int)
}

// SessionPresenter formats session and total durations from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	scan ScanningModel
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, scan ScanningModel, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, scan: scan, view: view}
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.scan == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.scan.Scanning(), now)
	s, t := p.sess.Values()
	p.view.SetSession(s, t, p.sess.Sessions())
}
