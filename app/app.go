package app

import (
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/ui/view"
)

const (
	tick = 50 * time.Millisecond
	// fatalExitDelay leaves the error on screen before the window closes.
	fatalExitDelay = 3 * time.Second
)

// app is the Tk shell around the scanner. All scanner calls happen on the
// Tk thread: button commands, the TclAfter tick and Map/Unmap bindings.
type app struct {
	container *AppContainer
	logger    *slog.Logger
	afterID   string
	exitID    string
	closed    bool
	failed    bool
}

// NewApp creates the window and the component container.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	c, err := BuildContainer(cfg, cfgPath, logger)
	if err != nil {
		return nil, err
	}
	a := &app{container: c, logger: logger}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a, nil
}

// Start builds the UI, resumes the scanner and blocks in the Tk event loop.
func (a *app) Start() error {
	c := a.container
	c.RootView.Build(view.Handlers{
		ScanOnce:       func() { c.ScanPresenter.ScanOnce() },
		ScanContinuous: func() { c.ScanPresenter.ScanContinuous() },
		Stop:           func() { c.ScanPresenter.Stop() },
		TogglePause:    func() { c.ScanPresenter.TogglePause() },
		ScanRegion:     func() { c.Region.OpenOrFocus() },
		Exit:           a.exitHandler,
		ApplyConfig:    func(cfg *config.Config) error { return c.ScanPresenter.ApplyConfig(cfg) },
	})
	if err := c.Wire(a.fatal, a.scheduleUpdate); err != nil {
		return err
	}
	Bind(App, "<Map>", Command(func() { c.Visibility.OnMap(time.Now()) }))
	Bind(App, "<Unmap>", Command(func() { c.Visibility.OnUnmap(time.Now()) }))

	c.ApplyInitialMode()
	// Waits for the preview to be mapped before opening the source.
	if err := c.Scanner.Resume(); err != nil {
		a.logger.Error("scanner resume", "error", err)
	}
	a.scheduleUpdate()
	App.Wait()
	a.shutdown()
	return nil
}

func (a *app) update() {
	if a.closed {
		return
	}
	a.container.Loop.Tick()
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps the update on Tk's event loop thread.
	a.afterID = TclAfter(tick, a.update)
}

// fatal shows err and closes the window shortly after. The scanner has
// already left the session when this runs.
func (a *app) fatal(err error) {
	if a.failed {
		return
	}
	a.failed = true
	a.logger.Error("scanner stopped", "error", err)
	a.container.RootView.SetStateLabel(fmt.Sprintf("Error: %v (closing)", err))
	a.exitID = TclAfter(fatalExitDelay, a.exitHandler)
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.shutdown()
	Destroy(App)
}

func (a *app) shutdown() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	if a.exitID != "" {
		TclAfterCancel(a.exitID)
	}
	if s := a.container.Scanner; s != nil {
		s.Close()
		s.Events().Close()
	}
	a.logger.Info("scanner closed", "results", a.container.History.Total())
}
