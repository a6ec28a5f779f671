package service

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"peoplecounter/internal/config"
	"peoplecounter/internal/dto"
	"peoplecounter/internal/logger"
	"peoplecounter/internal/service/capture"
	"peoplecounter/internal/service/display"
)

// PeopleDetector annotates a frame in place and reports what it found.
type PeopleDetector interface {
	DetectPeople(frame *gocv.Mat) (dto.FrameResult, error)
}

// Display shows frames and polls the keyboard.
type Display interface {
	Show(frame gocv.Mat)
	Poll(delay int) int
	Close() error
}

type Manager struct {
	detector   PeopleDetector
	newDisplay func() Display
	stopKey    int
	camera     int
	logger     *logger.Logger

	openImage  func(path string) (capture.Source, error)
	openVideo  func(path string) (capture.Source, error)
	openCamera func(device int) (capture.Source, error)
}

func NewManager(detector PeopleDetector, config *config.Config, logger *logger.Logger) *Manager {
	windowName := config.WindowName
	newDisplay := func() Display {
		return display.NewWindow(windowName)
	}

	return &Manager{
		detector:   detector,
		newDisplay: newDisplay,
		stopKey:    config.StopKeyCode(),
		camera:     config.CameraDevice,
		logger:     logger,
		openImage:  capture.OpenImage,
		openVideo:  capture.OpenVideo,
		openCamera: capture.OpenCamera,
	}
}

// ProcessImage counts people on a single image and shows it until a key is pressed.
func (m *Manager) ProcessImage(ctx context.Context, path string) (dto.RunSummary, error) {
	src, err := m.openImage(path)
	if err != nil {
		m.logger.Warning("Could not open image %s: %v", path, err)
		return dto.RunSummary{}, err
	}
	return m.Process(ctx, src)
}

// ProcessVideo counts people frame by frame until the file ends or the stop key is pressed.
func (m *Manager) ProcessVideo(ctx context.Context, path string) (dto.RunSummary, error) {
	src, err := m.openVideo(path)
	if err != nil {
		m.logger.Warning("Could not open video %s: %v", path, err)
		return dto.RunSummary{}, err
	}
	return m.Process(ctx, src)
}

// ProcessLive counts people on the camera feed until the stop key is pressed.
func (m *Manager) ProcessLive(ctx context.Context) (dto.RunSummary, error) {
	src, err := m.openCamera(m.camera)
	if err != nil {
		m.logger.Warning("Could not open camera %d: %v", m.camera, err)
		return dto.RunSummary{}, err
	}
	return m.Process(ctx, src)
}

// Process runs the read, detect, show, poll loop over src. It owns src and
// releases it together with the window when the loop ends.
func (m *Manager) Process(ctx context.Context, src capture.Source) (summary dto.RunSummary, err error) {
	summary.Source = src.Name()
	started := time.Now()

	window := m.newDisplay()
	frame := gocv.NewMat()
	defer func() {
		err = multierr.Combine(err, frame.Close(), src.Close(), window.Close())
		summary.Duration = time.Since(started)
		m.logger.Info("🛑 Finished %s: %d frame(s), peak %d people", summary.Source, summary.Frames, summary.PeakCount)
	}()

	m.logger.Info("🎬 Processing %s", summary.Source)

	for ctx.Err() == nil {
		if !src.Next(&frame) {
			break
		}

		result, detectErr := m.detector.DetectPeople(&frame)
		if detectErr != nil {
			m.logger.Error("Error detecting people on %s: %v", summary.Source, detectErr)
			return summary, detectErr
		}

		summary.Frames++
		summary.LastCount = result.PeopleCount
		if result.PeopleCount > summary.PeakCount {
			summary.PeakCount = result.PeopleCount
		}

		window.Show(frame)
		if key := window.Poll(src.Delay()); m.isStopKey(key) {
			summary.StoppedByUser = true
			break
		}
	}

	return summary, ctx.Err()
}

// isStopKey compares only the low byte, as waitKey may carry modifier bits.
func (m *Manager) isStopKey(key int) bool {
	return key >= 0 && key&0xFF == m.stopKey
}
