package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"

	"peoplecounter/internal/config"
	"peoplecounter/internal/dto"
	"peoplecounter/internal/handler"
	"peoplecounter/internal/logger"
	"peoplecounter/internal/service"
	"peoplecounter/internal/service/ai"
	"peoplecounter/internal/service/storage"
)

type App struct {
	config      *config.Config
	logger      *logger.Logger
	provisioner *storage.ProvisionerService
	detector    *ai.DetectorService
	manager     *service.Manager
}

func NewApp(cfg *config.Config) (*App, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	return &App{
		config:      cfg,
		logger:      log,
		provisioner: storage.NewProvisionerService(cfg, log),
	}, nil
}

// FetchAssets refreshes the model files. Failures are logged, not returned.
func (a *App) FetchAssets(ctx context.Context) dto.ProvisionReport {
	report := a.provisioner.Provision(ctx)
	if !report.OK() {
		a.logger.Warning("%d of %d assets could not be downloaded", len(report.Failed), len(a.provisioner.Assets()))
	}
	return report
}

// Start fetches the assets and loads the detector. A detector that cannot be
// loaded is fatal for the caller.
func (a *App) Start(ctx context.Context) error {
	a.FetchAssets(ctx)

	detector, err := ai.NewDetectorService(a.config, a.logger)
	if err != nil {
		a.logger.Error("Failed to load detection network: %v", err)
		return fmt.Errorf("failed to load detection network: %w", err)
	}

	a.detector = detector
	a.manager = service.NewManager(detector, a.config, a.logger)

	fmt.Printf("🚀 People Counter\n")
	fmt.Printf("🤖 Model: %s\n", a.config.WeightsPath())
	fmt.Printf("📁 Logs: %s\n", a.config.LogDirectory)
	return nil
}

// Manager returns the display loop. Start must have succeeded.
func (a *App) Manager() *service.Manager {
	return a.manager
}

// RunMenu runs the interactive menu on in/out.
func (a *App) RunMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	return handler.NewMenu(a.manager, in, out, a.logger).Run(ctx)
}

// Logger returns the application logger.
func (a *App) Logger() *logger.Logger {
	return a.logger
}

// Close releases the detector and flushes the logs.
func (a *App) Close() error {
	var err error
	if a.detector != nil {
		err = multierr.Append(err, a.detector.Close())
	}
	return multierr.Append(err, a.logger.Close())
}
