package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"peoplecounter/internal/config"
	"peoplecounter/internal/dto"
	"peoplecounter/internal/logger"
)

var (
	boxColor   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	countColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// forwarder runs the network on a prepared blob and returns one Mat per output layer.
type forwarder interface {
	Forward(blob gocv.Mat) ([]gocv.Mat, error)
	Close() error
}

// suppressFunc selects the indices of boxes that survive non-maximum suppression.
type suppressFunc func(boxes []image.Rectangle, scores []float32, scoreThreshold, nmsThreshold float32) []int

type DetectorService struct {
	net               forwarder
	filter            Filter
	suppress          suppressFunc
	inputSize         int
	nmsScoreThreshold float32
	nmsThreshold      float32
	logger            *logger.Logger
}

// NewDetectorService loads the network and the class names. The service is
// unusable without both, so any failure is returned to the caller.
func NewDetectorService(config *config.Config, logger *logger.Logger) (*DetectorService, error) {
	net, err := loadDarknet(config.WeightsPath(), config.NetConfigPath())
	if err != nil {
		return nil, err
	}

	classes, err := LoadClassList(config.NamesPath())
	if err != nil {
		net.Close()
		return nil, err
	}

	logger.Info("Detection network initialized: %d output layers, %d classes", len(net.outLayers), len(classes))
	return newDetectorService(net, classes, config, logger), nil
}

func newDetectorService(net forwarder, classes ClassList, config *config.Config, logger *logger.Logger) *DetectorService {
	return &DetectorService{
		net: net,
		filter: Filter{
			Classes:   classes,
			Target:    config.TargetClass,
			Threshold: config.ConfidenceThreshold,
		},
		suppress:          gocv.NMSBoxes,
		inputSize:         config.InputSize,
		nmsScoreThreshold: float32(config.NMSScoreThreshold),
		nmsThreshold:      float32(config.NMSThreshold),
		logger:            logger,
	}
}

// DetectPeople runs the network on frame, keeps target-class boxes that survive
// NMS and draws them together with the people count onto frame.
func (s *DetectorService) DetectPeople(frame *gocv.Mat) (dto.FrameResult, error) {
	if frame.Empty() {
		return dto.FrameResult{}, fmt.Errorf("frame is empty")
	}

	height, width := frame.Rows(), frame.Cols()

	blob := gocv.BlobFromImage(
		*frame,
		1.0/255.0,
		image.Pt(s.inputSize, s.inputSize),
		gocv.NewScalar(0, 0, 0, 0),
		true,
		false,
	)
	defer blob.Close()

	outputs, err := s.net.Forward(blob)
	if err != nil {
		return dto.FrameResult{}, fmt.Errorf("forward pass failed: %w", err)
	}
	defer func() {
		for i := range outputs {
			outputs[i].Close()
		}
	}()

	rows, err := outputRows(outputs)
	if err != nil {
		return dto.FrameResult{}, err
	}

	candidates := s.filter.Collect(rows, width, height)
	detections := s.Suppress(candidates)

	result := dto.FrameResult{
		PeopleCount: len(detections),
		Candidates:  len(candidates),
		Detections:  detections,
	}

	if err := Annotate(frame, result); err != nil {
		return result, err
	}
	return result, nil
}

// Suppress removes weak and overlapping candidates.
func (s *DetectorService) Suppress(candidates []dto.DetectionResult) []dto.DetectionResult {
	if len(candidates) == 0 {
		return nil
	}

	boxes := lo.Map(candidates, func(c dto.DetectionResult, _ int) image.Rectangle { return c.Rect() })
	scores := lo.Map(candidates, func(c dto.DetectionResult, _ int) float32 { return float32(c.Confidence) })

	indices := s.suppress(boxes, scores, s.nmsScoreThreshold, s.nmsThreshold)

	kept := make([]dto.DetectionResult, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(candidates) {
			kept = append(kept, candidates[i])
		}
	}
	return kept
}

// Annotate draws every detection and the people count onto frame.
func Annotate(frame *gocv.Mat, result dto.FrameResult) error {
	for _, detection := range result.Detections {
		if err := gocv.Rectangle(frame, detection.Rect(), boxColor, 2); err != nil {
			return fmt.Errorf("failed to draw rectangle: %w", err)
		}

		pt := image.Pt(detection.X, detection.Y-5)
		if err := gocv.PutText(frame, displayLabel(detection.Label), pt, gocv.FontHersheySimplex, 0.5, boxColor, 2); err != nil {
			return fmt.Errorf("failed to draw label: %w", err)
		}
	}

	text := fmt.Sprintf("People Count: %d", result.PeopleCount)
	if err := gocv.PutText(frame, text, image.Pt(10, 50), gocv.FontHersheySimplex, 1, countColor, 2); err != nil {
		return fmt.Errorf("failed to draw count: %w", err)
	}
	return nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	return s.net.Close()
}

// displayLabel capitalises a class name for drawing ("person" -> "Person").
func displayLabel(label string) string {
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// outputRows copies each output Mat into per-row float slices.
func outputRows(outputs []gocv.Mat) ([][][]float32, error) {
	rows := make([][][]float32, 0, len(outputs))
	for _, output := range outputs {
		if output.Empty() {
			continue
		}
		data, err := output.DataPtrFloat32()
		if err != nil {
			return nil, fmt.Errorf("failed to read output layer: %w", err)
		}

		n, cols := output.Rows(), output.Cols()
		layer := make([][]float32, 0, n)
		for i := 0; i < n; i++ {
			row := make([]float32, cols)
			copy(row, data[i*cols:(i+1)*cols])
			layer = append(layer, row)
		}
		rows = append(rows, layer)
	}
	return rows, nil
}

// darknetNet is a loaded Darknet network restricted to its unconnected output layers.
type darknetNet struct {
	net       gocv.Net
	outLayers []string
}

// loadDarknet loads the network and sets backend/target preferences.
func loadDarknet(weightsPath, configPath string) (*darknetNet, error) {
	if _, err := os.Stat(weightsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("weights file not found: %s", weightsPath)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("network config file not found: %s", configPath)
	}

	net := gocv.ReadNet(weightsPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s and %s", weightsPath, configPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if err := multierr.Combine(errBackend, errTarget); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target: %w", err)
	}

	outLayers := getOutputLayers(net)
	if len(outLayers) == 0 {
		net.Close()
		return nil, fmt.Errorf("network has no unconnected output layers")
	}

	return &darknetNet{net: net, outLayers: outLayers}, nil
}

func (n *darknetNet) Forward(blob gocv.Mat) ([]gocv.Mat, error) {
	n.net.SetInput(blob, "")
	outputs := n.net.ForwardLayers(n.outLayers)
	if len(outputs) == 0 {
		return nil, fmt.Errorf("network returned no outputs")
	}
	return outputs, nil
}

func (n *darknetNet) Close() error {
	return n.net.Close()
}

// getOutputLayers resolves the names of the unconnected output layers.
func getOutputLayers(net gocv.Net) []string {
	layerNames := net.GetLayerNames()
	unconnectedOutLayers := net.GetUnconnectedOutLayers()

	var outputLayers []string
	for _, i := range unconnectedOutLayers {
		if i-1 >= 0 && i-1 < len(layerNames) {
			outputLayers = append(outputLayers, layerNames[i-1])
		}
	}

	return outputLayers
}
