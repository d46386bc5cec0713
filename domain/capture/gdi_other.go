//go:build !windows

package capture

import "errors"

// GDIAvailable reports whether the GDI grabber can be used on this platform.
const GDIAvailable = false

// NewGDIGrabber is only implemented on Windows.
func NewGDIGrabber(region RegionFunc) (Grabber, error) {
	return nil, errors.New("gdi capture is only available on windows")
}
