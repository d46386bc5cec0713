package capture

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	kbscreenshot "github.com/kbinani/screenshot"
	"github.com/vova616/screenshot"
)

// RegionFunc returns the screen rectangle to capture; nil or empty means the
// whole screen. It is read on every grab so the region can change live.
type RegionFunc func() *image.Rectangle

// ScreenGrabber captures the primary screen, or the current Region.
type ScreenGrabber struct {
	Region RegionFunc
}

func (g ScreenGrabber) Grab() (*image.RGBA, error) {
	if g.Region != nil {
		if r := g.Region(); r != nil && !r.Empty() {
			return screenshot.CaptureRect(*r)
		}
	}
	return screenshot.CaptureScreen()
}

// DisplayGrabber captures one display by index.
type DisplayGrabber struct {
	Index int
}

// NewDisplayGrabber validates index against the active displays.
func NewDisplayGrabber(index int) (*DisplayGrabber, error) {
	n := kbscreenshot.NumActiveDisplays()
	if index < 0 || index >= n {
		return nil, fmt.Errorf("display %d out of range (%d active)", index, n)
	}
	return &DisplayGrabber{Index: index}, nil
}

func (g *DisplayGrabber) Grab() (*image.RGBA, error) {
	return kbscreenshot.CaptureDisplay(g.Index)
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true}

// ImageDirGrabber cycles through the images of a directory in name order.
// Useful as a replay source when no screen or camera is present.
type ImageDirGrabber struct {
	mu     sync.Mutex
	frames []*image.RGBA
	next   int
}

// NewImageDirGrabber loads every supported image in dir.
func NewImageDirGrabber(dir string) (*ImageDirGrabber, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	g := &ImageDirGrabber{}
	for _, name := range names {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		g.frames = append(g.frames, ToRGBA(img))
	}
	if len(g.frames) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}
	return g, nil
}

// NewStaticGrabber replays the given images in order.
func NewStaticGrabber(imgs ...image.Image) *ImageDirGrabber {
	g := &ImageDirGrabber{}
	for _, img := range imgs {
		g.frames = append(g.frames, ToRGBA(img))
	}
	return g
}

// Grab returns a copy of the next image so consumers never share backing arrays.
func (g *ImageDirGrabber) Grab() (*image.RGBA, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.frames) == 0 {
		return nil, nil
	}
	src := g.frames[g.next]
	g.next = (g.next + 1) % len(g.frames)
	dst := acquireFrame(src.Rect)
	draw.Draw(dst, src.Rect, src, src.Rect.Min, draw.Src)
	return dst, nil
}

// ToRGBA converts img to an *image.RGBA, reusing a pooled buffer when a copy is needed.
func ToRGBA(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	dst := acquireFrame(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}
