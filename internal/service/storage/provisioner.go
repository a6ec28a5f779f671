package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/multierr"

	"peoplecounter/internal/config"
	"peoplecounter/internal/dto"
	"peoplecounter/internal/logger"
)

// Asset is a model file fetched from a fixed URL into the asset directory.
type Asset struct {
	Name string
	URL  string
}

// ProvisionerService keeps the model assets in the asset directory.
type ProvisionerService struct {
	assetDir string
	assets   []Asset
	refresh  bool
	client   *resty.Client
	logger   *logger.Logger
}

// NewProvisionerService creates a provisioner for the weights, network config and class names.
func NewProvisionerService(config *config.Config, logger *logger.Logger) *ProvisionerService {
	client := resty.New().
		SetLogger(logger.Sugar()).
		SetRetryCount(0)
	if config.DownloadTimeout > 0 {
		client.SetTimeout(time.Duration(config.DownloadTimeout) * time.Second)
	}

	return &ProvisionerService{
		assetDir: config.AssetDirectory,
		assets: []Asset{
			{Name: config.WeightsFile, URL: config.WeightsURL},
			{Name: config.NetConfigFile, URL: config.NetConfigURL},
			{Name: config.NamesFile, URL: config.NamesURL},
		},
		refresh: config.RefreshAssets,
		client:  client,
		logger:  logger,
	}
}

// Assets returns the configured assets in fetch order.
func (s *ProvisionerService) Assets() []Asset {
	return s.assets
}

// Provision removes each local asset and fetches it again. A failed fetch is
// logged and the remaining assets are still processed.
func (s *ProvisionerService) Provision(ctx context.Context) dto.ProvisionReport {
	report := dto.ProvisionReport{Failed: make(map[string]error)}

	if err := os.MkdirAll(s.assetDir, 0755); err != nil {
		s.logger.Error("Error creating asset directory: %v", err)
	}

	for _, asset := range s.assets {
		path := filepath.Join(s.assetDir, asset.Name)

		if !s.refresh {
			if _, err := os.Stat(path); err == nil {
				s.logger.Info("Keeping existing %s", asset.Name)
				report.Kept = append(report.Kept, asset.Name)
				continue
			}
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warning("Could not remove old %s: %v", asset.Name, err)
		}

		if err := s.fetch(ctx, asset, path); err != nil {
			s.logger.Error("Error downloading %s: %v", asset.Name, err)
			report.Failed[asset.Name] = err
			continue
		}

		s.logger.Info("📥 Downloaded %s", asset.Name)
		report.Fetched = append(report.Fetched, asset.Name)
	}

	return report
}

// fetch streams the asset body into a temp file and renames it into place on success.
func (s *ProvisionerService) fetch(ctx context.Context, asset Asset, path string) (err error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(asset.URL)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status %s", resp.Status())
	}

	tmp, err := os.CreateTemp(s.assetDir, asset.Name+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, resp.RawBody()); err != nil {
		err = multierr.Append(fmt.Errorf("failed to write body: %w", err), tmp.Close())
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", asset.Name, err)
	}
	return nil
}
