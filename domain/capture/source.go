package capture

import (
	"fmt"
	"image"

	"github.com/soocke/pixel-scan-go/config"
)

// NewGrabberFactory maps cfg.Source to a grabber constructor. region feeds
// the screen source; when nil the configured selection is used.
func NewGrabberFactory(cfg *config.Config, region RegionFunc) (GrabberFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("grabber factory: nil config")
	}
	switch cfg.Source {
	case config.SourceScreen, "":
		if region == nil {
			region = selectionRegion(cfg)
		}
		return func() (Grabber, error) { return ScreenGrabber{Region: region}, nil }, nil
	case config.SourceGDI:
		if !GDIAvailable {
			return nil, fmt.Errorf("grabber factory: gdi source needs windows")
		}
		if region == nil {
			region = selectionRegion(cfg)
		}
		return func() (Grabber, error) { return NewGDIGrabber(region) }, nil
	case config.SourceDisplay:
		index := cfg.DisplayIndex
		return func() (Grabber, error) { return NewDisplayGrabber(index) }, nil
	case config.SourceImages:
		dir := cfg.ImageDir
		if dir == "" {
			return nil, fmt.Errorf("grabber factory: image source needs image_dir")
		}
		return func() (Grabber, error) { return NewImageDirGrabber(dir) }, nil
	case config.SourceCamera:
		if !CameraAvailable {
			return nil, ErrCameraUnsupported
		}
		device := cfg.CameraDevice
		return func() (Grabber, error) { return NewCameraGrabber(device) }, nil
	default:
		return nil, fmt.Errorf("grabber factory: unknown source %q", cfg.Source)
	}
}

func selectionRegion(cfg *config.Config) RegionFunc {
	if !cfg.HasSelection() {
		return nil
	}
	r := image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
	return func() *image.Rectangle { return &r }
}
