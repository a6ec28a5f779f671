package capture

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	ErrUnreadableImage  = errors.New("unable to read the image")
	ErrUnopenableVideo  = errors.New("unable to open the video")
	ErrUnopenableCamera = errors.New("unable to open the camera")
)

const (
	// WaitForKey blocks the key poll until any key is pressed.
	WaitForKey = 0
	// PollKey checks for a key press without holding the frame on screen.
	PollKey = 1
)

// Source yields frames one at a time until it is exhausted.
type Source interface {
	// Next reads the next frame into dst. It returns false once no frame is left.
	Next(dst *gocv.Mat) bool
	// Delay is the key-poll delay in milliseconds to use after showing a frame.
	Delay() int
	Close() error
	Name() string
}

// imageSource yields a single still frame.
type imageSource struct {
	path   string
	frame  gocv.Mat
	served bool
}

// OpenImage reads an image file. An unreadable file returns ErrUnreadableImage.
func OpenImage(path string) (Source, error) {
	frame := gocv.IMRead(path, gocv.IMReadColor)
	if frame.Empty() {
		frame.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}
	return &imageSource{path: path, frame: frame}, nil
}

func (s *imageSource) Next(dst *gocv.Mat) bool {
	if s.served {
		return false
	}
	s.served = true
	s.frame.CopyTo(dst)
	return !dst.Empty()
}

func (s *imageSource) Delay() int   { return WaitForKey }
func (s *imageSource) Name() string { return s.path }

func (s *imageSource) Close() error {
	return s.frame.Close()
}

// captureSource reads frames from a video file or a camera device.
type captureSource struct {
	name    string
	capture *gocv.VideoCapture
}

// OpenVideo opens a video file for sequential reading.
func OpenVideo(path string) (Source, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		closeCapture(vc)
		return nil, fmt.Errorf("%w: %s: %v", ErrUnopenableVideo, path, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnopenableVideo, path)
	}
	return &captureSource{name: path, capture: vc}, nil
}

// OpenCamera opens a live camera device by index.
func OpenCamera(device int) (Source, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		closeCapture(vc)
		return nil, fmt.Errorf("%w: device %d: %v", ErrUnopenableCamera, device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d", ErrUnopenableCamera, device)
	}
	return &captureSource{name: fmt.Sprintf("camera %d", device), capture: vc}, nil
}

func (s *captureSource) Next(dst *gocv.Mat) bool {
	if !s.capture.IsOpened() {
		return false
	}
	return s.capture.Read(dst) && !dst.Empty()
}

func (s *captureSource) Delay() int   { return PollKey }
func (s *captureSource) Name() string { return s.name }

func (s *captureSource) Close() error {
	return s.capture.Close()
}

// closeCapture releases a capture that gocv returned alongside an open error.
func closeCapture(vc *gocv.VideoCapture) {
	if vc != nil {
		vc.Close()
	}
}
