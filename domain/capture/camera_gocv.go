//go:build gocv

package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// CameraAvailable reports whether this build can open camera devices.
const CameraAvailable = true

var errCameraClosed = errors.New("camera closed")

// CameraGrabber reads frames from a video capture device through OpenCV.
type CameraGrabber struct {
	mu     sync.Mutex
	device *gocv.VideoCapture
	mat    gocv.Mat
	closed bool
}

// NewCameraGrabber opens device (an index such as 0 or a device path).
func NewCameraGrabber(device string) (Grabber, error) {
	var id interface{} = device
	if n, err := parseDeviceIndex(device); err == nil {
		id = n
	}
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %q: %w", device, err)
	}
	return &CameraGrabber{device: vc, mat: gocv.NewMat()}, nil
}

func (g *CameraGrabber) Grab() (*image.RGBA, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, errCameraClosed
	}
	if ok := g.device.Read(&g.mat); !ok || g.mat.Empty() {
		return nil, nil
	}
	img, err := g.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert camera frame: %w", err)
	}
	return ToRGBA(img), nil
}

// Close releases the device. Safe to call more than once.
func (g *CameraGrabber) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	_ = g.mat.Close()
	return g.device.Close()
}
