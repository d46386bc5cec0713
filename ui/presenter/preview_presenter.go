package presenter

import (
	"image"

	"github.com/soocke/pixel-scan-go/domain/capture"
	"github.com/soocke/pixel-scan-go/ui/images"
)

// PreviewSource supplies the latest frame and where it goes in the widget.
type PreviewSource interface {
	LatestFrame() capture.FrameSnapshot
	Layout(bounds image.Point) image.Rectangle
}

// PreviewView is the widget the frames are drawn on.
type PreviewView interface {
	Bounds() image.Point
	ShowPreview(img image.Image)
	ResetPreview()
}

// PreviewPresenter redraws the preview when a new frame arrives or the
// layout is invalidated.
type PreviewPresenter struct {
	src      PreviewSource
	view     PreviewView
	lastSeq  uint64
	lastRect image.Rectangle
	showing  bool
	dirty    bool
}

func NewPreviewPresenter(src PreviewSource, view PreviewView) *PreviewPresenter {
	return &PreviewPresenter{src: src, view: view}
}

// Invalidate forces the next ProcessFrame to recompute the layout and redraw.
func (p *PreviewPresenter) Invalidate() {
	if p != nil {
		p.dirty = true
	}
}

// ProcessFrame draws the latest frame if anything changed since the last call.
func (p *PreviewPresenter) ProcessFrame() {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	snap := p.src.LatestFrame()
	if snap.Image == nil {
		if p.showing {
			p.view.ResetPreview()
			p.showing = false
			p.lastSeq = 0
		}
		return
	}
	bounds := p.view.Bounds()
	rect := p.src.Layout(bounds)
	if p.showing && !p.dirty && snap.Sequence == p.lastSeq && rect == p.lastRect {
		return
	}
	p.view.ShowPreview(images.Compose(snap.Image, bounds, rect))
	p.lastSeq, p.lastRect, p.showing, p.dirty = snap.Sequence, rect, true, false
}
