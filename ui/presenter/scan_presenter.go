package presenter

import (
	"image"
	"log/slog"

	"github.com/soocke/pixel-scan-go/config"
	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/domain/decode"
	"github.com/soocke/pixel-scan-go/domain/scanner"
	"github.com/soocke/pixel-scan-go/ui/images"
	"github.com/soocke/pixel-scan-go/ui/model"
)

// roiPad grows the crop around result points so quiet zones stay visible.
const roiPad = 12

// ScanModel holds the user's pause flag and the last delivered result.
type ScanModel interface {
	Paused() bool
	SetPaused(bool) bool
	SetLast(decode.Result)
}

// Scanner narrows the coordinator to what the presenter drives.
type Scanner interface {
	Resume() error
	Pause()
	DecodeSingle(scanner.ResultCallback)
	DecodeContinuous(scanner.ResultCallback)
	StopDecoding()
	Mode() scanner.DecodeMode
	SetDecoder(decode.Decoder)
	LatestFrame() capture.FrameSnapshot
}

// ScanView updates UI elements affected by scanning.
type ScanView interface {
	ShowResult(res decode.Result, seen int)
	SetHistory(entries []model.HistoryEntry)
	ShowResultROI(img image.Image)
	SetPaused(paused bool)
	SetStateLabel(text string)
}

// ScanPresenter owns presentation logic for the scan buttons.
type ScanPresenter struct {
	model   ScanModel
	scanner Scanner
	history *model.ResultHistory
	view    ScanView
	logger  *slog.Logger
}

func NewScanPresenter(m ScanModel, s Scanner, history *model.ResultHistory, view ScanView, logger *slog.Logger) *ScanPresenter {
	return &ScanPresenter{model: m, scanner: s, history: history, view: view, logger: logger}
}

func (p *ScanPresenter) ready() bool {
	return p != nil && p.model != nil && p.scanner != nil && p.view != nil
}

// ScanOnce delivers the next result and then stops decoding.
func (p *ScanPresenter) ScanOnce() {
	if !p.ready() {
		return
	}
	p.scanner.DecodeSingle(p.onResult)
}

// ScanContinuous delivers every result until Stop.
func (p *ScanPresenter) ScanContinuous() {
	if !p.ready() {
		return
	}
	p.scanner.DecodeContinuous(p.onResult)
}

// Stop clears the decode mode; the preview keeps running.
func (p *ScanPresenter) Stop() {
	if !p.ready() {
		return
	}
	p.scanner.StopDecoding()
}

// Pause releases the frame source. Idempotent.
func (p *ScanPresenter) Pause() {
	if !p.ready() || !p.model.SetPaused(true) {
		return
	}
	p.scanner.Pause()
	p.view.SetPaused(true)
}

// Resume reacquires the frame source. Idempotent.
func (p *ScanPresenter) Resume() {
	if !p.ready() || !p.model.SetPaused(false) {
		return
	}
	if err := p.scanner.Resume(); err != nil {
		if p.logger != nil {
			p.logger.Error("resume failed", "error", err)
		}
		p.model.SetPaused(true)
		p.view.SetPaused(true)
		return
	}
	p.view.SetPaused(false)
}

// TogglePause flips between Pause and Resume.
func (p *ScanPresenter) TogglePause() {
	if !p.ready() {
		return
	}
	if p.model.Paused() {
		p.Resume()
		return
	}
	p.Pause()
}

// ApplyConfig rebuilds the decoder from cfg and hands it to the scanner.
func (p *ScanPresenter) ApplyConfig(cfg *config.Config) error {
	if !p.ready() {
		return nil
	}
	d, err := decode.FromConfig(cfg)
	if err != nil {
		p.view.SetStateLabel("Config error: " + err.Error())
		return err
	}
	p.scanner.SetDecoder(d)
	return nil
}

func (p *ScanPresenter) onResult(res decode.Result) {
	p.model.SetLast(res)
	seen := 1
	if p.history != nil {
		e, _ := p.history.Add(res)
		seen = e.Count
	}
	p.view.ShowResult(res, seen)
	if p.history != nil {
		p.view.SetHistory(p.history.Entries())
	}
	if p.logger != nil {
		p.logger.Info("scan result", "format", res.Format, "text", res.Text, "seen", seen)
	}
	snap := p.scanner.LatestFrame()
	if snap.Image == nil || len(res.Points) == 0 {
		return
	}
	if roi, _, err := images.ResultROI(snap.Image, res.Points, roiPad); err == nil {
		p.view.ShowResultROI(roi)
	}
}
