package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"peoplecounter/internal/dto"
	"peoplecounter/internal/logger"
	"peoplecounter/internal/service/capture"
)

const (
	ChoiceImage = "1"
	ChoiceVideo = "2"
	ChoiceLive  = "3"
	ChoiceExit  = "4"
)

// Processor runs one of the three processing modes.
type Processor interface {
	ProcessImage(ctx context.Context, path string) (dto.RunSummary, error)
	ProcessVideo(ctx context.Context, path string) (dto.RunSummary, error)
	ProcessLive(ctx context.Context) (dto.RunSummary, error)
}

// Menu is the interactive text loop that dispatches to a Processor.
type Menu struct {
	processor Processor
	in        *bufio.Reader
	out       io.Writer
	errColor  *color.Color
	logger    *logger.Logger
}

func NewMenu(processor Processor, in io.Reader, out io.Writer, logger *logger.Logger) *Menu {
	return &Menu{
		processor: processor,
		in:        bufio.NewReader(in),
		out:       out,
		errColor:  color.New(color.FgRed),
		logger:    logger,
	}
}

// Run prints the options and handles choices until Exit is chosen or input ends.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(m.out, "Select an option:")
		fmt.Fprintln(m.out, "1. Process Image")
		fmt.Fprintln(m.out, "2. Process Video")
		fmt.Fprintln(m.out, "3. Live Camera")
		fmt.Fprintln(m.out, "4. Exit")

		choice, ok := m.prompt("Enter choice: ")
		if !ok {
			return nil
		}

		switch choice {
		case ChoiceImage:
			m.processImage(ctx)
		case ChoiceVideo:
			m.processVideo(ctx)
		case ChoiceLive:
			m.processLive(ctx)
		case ChoiceExit:
			return nil
		default:
			m.errColor.Fprintln(m.out, "Invalid choice, try again.")
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (m *Menu) processImage(ctx context.Context) {
	path, ok := m.prompt("Enter image path: ")
	if !ok {
		return
	}

	summary, err := m.processor.ProcessImage(ctx, path)
	if errors.Is(err, capture.ErrUnreadableImage) {
		m.errColor.Fprintln(m.out, "Error: Unable to read the image. Please check the path and try again.")
		return
	}
	m.report(summary, err)
}

func (m *Menu) processVideo(ctx context.Context) {
	path, ok := m.prompt("Enter video path: ")
	if !ok {
		return
	}

	summary, err := m.processor.ProcessVideo(ctx, path)
	if errors.Is(err, capture.ErrUnopenableVideo) {
		m.errColor.Fprintln(m.out, "Error: Unable to open the video. Please check the path and try again.")
		return
	}
	m.report(summary, err)
}

func (m *Menu) processLive(ctx context.Context) {
	summary, err := m.processor.ProcessLive(ctx)
	if errors.Is(err, capture.ErrUnopenableCamera) {
		m.errColor.Fprintln(m.out, "Error: Unable to open the camera.")
		return
	}
	m.report(summary, err)
}

// report prints the outcome of a finished run.
func (m *Menu) report(summary dto.RunSummary, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Error("Processing %s failed: %v", summary.Source, err)
		m.errColor.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	if summary.Frames > 0 {
		fmt.Fprintf(m.out, "Processed %d frame(s), last count %d, peak %d.\n", summary.Frames, summary.LastCount, summary.PeakCount)
	}
}

// prompt writes label and reads one line. It returns false when input is exhausted.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)

	line, err := m.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}
