package view

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/domain/decode"
	"github.com/soocke/pixel-scan-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are invoked on user actions, on the Tk thread.
type Handlers struct {
	ScanOnce       func()
	ScanContinuous func()
	Stop           func()
	TogglePause    func()
	ScanRegion     func()
	Exit           func()
	ApplyConfig    func(*config.Config) error
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     *PreviewPane

	// Widgets
	StateLabel  *LabelWidget
	ResultLabel *LabelWidget
	PauseBtn    *ButtonWidget
	History     *TextWidget
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Row 0: session stats, state label, buttons frame
	statsFrame := Frame()
	Grid(statsFrame, Row(0), Column(0), Columnspan(2), Sticky("nw"), Padx("0.3m"), Pady("0.3m"))
	rv.Session = NewSessionStats(statsFrame, 0, 0)
	rv.StateLabel = Label(Txt("State: idle"), Borderwidth(1), Relief("ridge"), Anchor("w"))
	Grid(rv.StateLabel, Row(0), Column(2), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		text string
		fn   func()
	}{
		{"Scan Once", h.ScanOnce},
		{"Scan Continuous", h.ScanContinuous},
		{"Stop", h.Stop},
		{"Pause", h.TogglePause},
		{"Scan Region", h.ScanRegion},
		{"Exit", h.Exit},
	}
	for i, b := range buttons {
		fn := b.fn
		if fn == nil {
			fn = func() {}
		}
		btn := Button(Txt(b.text), Command(fn))
		Grid(btn, In(btnFrame), Row(i), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		if b.text == "Pause" {
			rv.PauseBtn = btn
		}
	}

	// Row 1: last result
	rv.ResultLabel = Label(Txt("Result: <none>"), Borderwidth(1), Relief("groove"), Anchor("w"), Width(60))
	Grid(rv.ResultLabel, Row(1), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	// Decoder settings rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, h.ApplyConfig)
	row := rv.ConfigPanel.Build(2)

	// Preview and result crop
	rv.Preview = NewPreviewPane(row)
	row++

	rv.History = Text(Height(6), Width(80))
	Grid(rv.History, Row(row), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// ShowResult shows the latest delivered result.
func (rv *RootView) ShowResult(res decode.Result, seen int) {
	if rv == nil || rv.ResultLabel == nil {
		return
	}
	text := fmt.Sprintf("Result [%s]: %s", res.Format, res.Text)
	if seen > 1 {
		text += fmt.Sprintf(" (%s time)", humanize.Ordinal(seen))
	}
	rv.ResultLabel.Configure(Txt(text))
}

// ShowResultROI proxies to the preview pane.
func (rv *RootView) ShowResultROI(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ShowROI(img)
	}
}

// SetPaused flips the pause button caption.
func (rv *RootView) SetPaused(paused bool) {
	if rv == nil || rv.PauseBtn == nil {
		return
	}
	if paused {
		rv.PauseBtn.Configure(Txt("Resume"))
	} else {
		rv.PauseBtn.Configure(Txt("Pause"))
	}
}

// SetSession updates the scanning timers.
func (rv *RootView) SetSession(session, total time.Duration, sessions int) {
	if rv != nil && rv.Session != nil {
		rv.Session.SetSession(session, total, sessions)
	}
}

// SetHistory replaces the history list.
func (rv *RootView) SetHistory(entries []model.HistoryEntry) {
	if rv == nil || rv.History == nil {
		return
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-12s x%-4d %s\n", humanize.Time(e.LastSeen), e.Format, e.Count, e.Text)
	}
	rv.History.Delete("1.0", END)
	rv.History.Insert("1.0", b.String())
}

// Bounds, ShowPreview and ResetPreview proxy to the preview pane.
func (rv *RootView) Bounds() image.Point { return rv.Preview.Bounds() }

func (rv *RootView) ShowPreview(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ShowPreview(img)
	}
}

func (rv *RootView) ResetPreview() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ResetPreview()
	}
}
