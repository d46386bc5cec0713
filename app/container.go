package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/decode"
	"github.com/soocke/pixel-scan-go/domain/scanner"
	"github.com/soocke/pixel-scan-go/ui/model"
	"github.com/soocke/pixel-scan-go/ui/presenter"
	"github.com/soocke/pixel-scan-go/ui/view"
)

// visibilitySettle is how long the window must stay mapped or unmapped
// before the preview surface follows.
const visibilitySettle = 150 * time.Millisecond

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config  *config.Config
	CfgPath string
	Logger  *slog.Logger

	Scan    *model.ScanModel
	Session *model.SessionModel
	History *model.ResultHistory

	Opener  capture.Opener
	Decoder decode.Decoder
	Scanner *scanner.Coordinator

	RootView *view.RootView
	Region   view.RegionOverlay

	// Presenters
	ScanPresenter    *presenter.ScanPresenter
	StatusPresenter  *presenter.StatusPresenter
	SessionPresenter *presenter.SessionPresenter
	PreviewPresenter *presenter.PreviewPresenter
	Visibility       *presenter.VisibilityWatcher
	Loop             *presenter.Loop
}

// BuildContainer constructs everything that does not need live widgets.
// The scanner and presenters are wired by Wire once the view is built.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}
	c.Scan = &model.ScanModel{}
	c.Session = model.NewSessionModel()
	history, err := model.NewResultHistory(cfg.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("result history: %w", err)
	}
	c.History = history
	c.Region = view.NewRegionOverlay(cfg, cfgPath, logger)

	factory, err := capture.NewGrabberFactory(cfg, c.Region.ActiveRect)
	if err != nil {
		return nil, err
	}
	c.Opener = capture.NewOpener(logger, capture.OpenerConfig{
		NewGrabber: factory,
		Interval:   time.Duration(cfg.CaptureIntervalMs) * time.Millisecond,
	})
	if c.Decoder, err = decode.FromConfig(cfg); err != nil {
		return nil, err
	}
	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	return c, nil
}

// Wire builds the coordinator against the preview pane and connects the
// presenters. Call after RootView.Build.
func (c *AppContainer) Wire(onFatal func(error), schedule func()) error {
	pane := c.RootView.Preview
	if pane == nil {
		return scanner.ErrNoRenderTarget
	}
	var err error
	c.Scanner, err = scanner.NewCoordinator(scanner.Options{
		Logger:       c.Logger,
		Opener:       c.Opener,
		Target:       pane,
		Decoder:      c.Decoder,
		StopTimeout:  time.Duration(c.Config.StopTimeoutMs) * time.Millisecond,
		OpenAttempts: c.Config.OpenAttempts,
		OpenBackoff:  time.Duration(c.Config.OpenBackoffMs) * time.Millisecond,
		MirrorLayout: c.Config.MirrorLayout,
		OnFatal:      onFatal,
		OnLayout:     func() { c.PreviewPresenter.Invalidate() },
	})
	if err != nil {
		return err
	}
	c.ScanPresenter = presenter.NewScanPresenter(c.Scan, c.Scanner, c.History, c.RootView, c.Logger)
	c.StatusPresenter = presenter.NewStatusPresenter(c.Scanner, c.RootView)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, presenter.ScanningFunc(func() bool {
		return c.Scanner.State() == scanner.StateActive
	}), c.RootView)
	c.PreviewPresenter = presenter.NewPreviewPresenter(c.Scanner, c.RootView)
	c.Visibility = presenter.NewVisibilityWatcher(pane, c.Logger, visibilitySettle)
	c.Loop = presenter.NewLoop(c.Scanner.Drain, c.Visibility, c.StatusPresenter, c.SessionPresenter, c.PreviewPresenter, schedule)
	return nil
}

// ApplyInitialMode arms the decode mode named in the config.
func (c *AppContainer) ApplyInitialMode() {
	mode, _ := scanner.ParseDecodeMode(c.Config.DecodeMode)
	switch mode {
	case scanner.ModeSingle:
		c.ScanPresenter.ScanOnce()
	case scanner.ModeContinuous:
		c.ScanPresenter.ScanContinuous()
	}
}
