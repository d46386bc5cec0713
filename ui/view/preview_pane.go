package view

import (
	"image"

	"github.com/soocke/pixel-scan-go/domain/scanner"
	"github.com/soocke/pixel-scan-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const (
	// Fixed preview area; frames are letterboxed into it.
	PreviewW = 480
	PreviewH = 320
	roiSide  = 160
)

// PreviewPane owns the live preview label, which is the scanner's render
// target, and a smaller label showing the area around the last result.
type PreviewPane struct {
	scanner.Surface

	previewLabel *LabelWidget
	roiLabel     *LabelWidget
	previewPhoto *Img
	roiPhoto     *Img
}

// NewPreviewPane creates the labels and grids them at row. The pane starts
// unavailable; the owner marks it available once the window is mapped.
func NewPreviewPane(row int) *PreviewPane {
	p := &PreviewPane{}
	p.previewPhoto = NewPhoto(Data(images.EncodePNG(images.Placeholder(PreviewW, PreviewH))))
	p.roiPhoto = NewPhoto(Data(images.EncodePNG(images.Placeholder(roiSide, roiSide))))
	p.previewLabel = Label(Image(p.previewPhoto), Borderwidth(1), Relief("sunken"))
	p.roiLabel = Label(Image(p.roiPhoto), Borderwidth(1), Relief("sunken"))
	Grid(p.previewLabel, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(p.roiLabel, Row(row), Column(4), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return p
}

// Bounds is the size frames are composed to.
func (p *PreviewPane) Bounds() image.Point { return image.Pt(PreviewW, PreviewH) }

// ShowPreview replaces the preview photo, deleting the old one so Tk does
// not retain obsolete pixel buffers.
func (p *PreviewPane) ShowPreview(img image.Image) {
	if p == nil || p.previewLabel == nil || img == nil {
		return
	}
	p.previewPhoto = p.swap(p.previewLabel, p.previewPhoto, img)
}

// ShowROI shows img scaled to the side panel.
func (p *PreviewPane) ShowROI(img image.Image) {
	if p == nil || p.roiLabel == nil || img == nil {
		return
	}
	p.roiPhoto = p.swap(p.roiLabel, p.roiPhoto, images.ScaleToFit(img, roiSide, roiSide))
}

// ResetPreview restores the placeholder.
func (p *PreviewPane) ResetPreview() {
	if p == nil || p.previewLabel == nil {
		return
	}
	p.previewPhoto = p.swap(p.previewLabel, p.previewPhoto, images.Placeholder(PreviewW, PreviewH))
}

func (p *PreviewPane) swap(label *LabelWidget, old *Img, img image.Image) *Img {
	if old != nil {
		old.Delete()
	}
	photo := NewPhoto(Data(images.EncodePNG(img)))
	label.Configure(Image(photo))
	return photo
}
