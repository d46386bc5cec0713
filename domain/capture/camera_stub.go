//go:build !gocv

package capture

// CameraAvailable reports whether this build can open camera devices.
const CameraAvailable = false

// NewCameraGrabber always fails in builds without OpenCV.
func NewCameraGrabber(device string) (Grabber, error) {
	return nil, ErrCameraUnsupported
}
