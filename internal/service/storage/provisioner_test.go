package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peoplecounter/internal/config"
	"peoplecounter/internal/logger"
)

func newAssetServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/yolov4.weights", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("weights-bytes"))
	})
	mux.HandleFunc("/yolov4.cfg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[net]\nwidth=416\nheight=416\n"))
	})
	mux.HandleFunc("/coco.names", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("person\nbicycle\ncar\n"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestProvisioner(t *testing.T, serverURL string, mutate func(*config.Config)) (*ProvisionerService, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		AssetDirectory: filepath.Join(root, "assets"),
		WeightsFile:    "yolov4.weights",
		WeightsURL:     serverURL + "/yolov4.weights",
		NetConfigFile:  "yolov4.cfg",
		NetConfigURL:   serverURL + "/yolov4.cfg",
		NamesFile:      "coco.names",
		NamesURL:       serverURL + "/coco.names",
		RefreshAssets:  true,
		LogDirectory:   filepath.Join(root, "logs"),
	}
	if mutate != nil {
		mutate(cfg)
	}

	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	return NewProvisionerService(cfg, log), cfg
}

func TestProvision_FetchesAllAssets(t *testing.T) {
	server := newAssetServer(t)
	svc, cfg := newTestProvisioner(t, server.URL, nil)

	report := svc.Provision(context.Background())

	assert.True(t, report.OK())
	assert.Equal(t, []string{"yolov4.weights", "yolov4.cfg", "coco.names"}, report.Fetched)

	names, err := os.ReadFile(cfg.NamesPath())
	require.NoError(t, err)
	assert.Equal(t, "person\nbicycle\ncar\n", string(names))
}

func TestProvision_OverwritesExistingFiles(t *testing.T) {
	server := newAssetServer(t)
	svc, cfg := newTestProvisioner(t, server.URL, nil)

	require.NoError(t, os.MkdirAll(cfg.AssetDirectory, 0755))
	require.NoError(t, os.WriteFile(cfg.WeightsPath(), []byte("stale"), 0644))

	svc.Provision(context.Background())

	weights, err := os.ReadFile(cfg.WeightsPath())
	require.NoError(t, err)
	assert.Equal(t, "weights-bytes", string(weights))
}

func TestProvision_OneFailureDoesNotStopTheOthers(t *testing.T) {
	server := newAssetServer(t)
	svc, cfg := newTestProvisioner(t, server.URL, func(c *config.Config) {
		c.WeightsURL = server.URL + "/missing.weights"
	})

	require.NoError(t, os.MkdirAll(cfg.AssetDirectory, 0755))
	require.NoError(t, os.WriteFile(cfg.WeightsPath(), []byte("stale"), 0644))

	report := svc.Provision(context.Background())

	assert.False(t, report.OK())
	require.Contains(t, report.Failed, "yolov4.weights")
	assert.Contains(t, report.Failed["yolov4.weights"].Error(), "404")
	assert.Equal(t, []string{"yolov4.cfg", "coco.names"}, report.Fetched)

	// Stary plik usunięty, nowy nie powstał
	_, err := os.Stat(cfg.WeightsPath())
	assert.True(t, os.IsNotExist(err))

	leftovers, err := filepath.Glob(filepath.Join(cfg.AssetDirectory, "*.part"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	errorLog, err := os.ReadFile(filepath.Join(cfg.LogDirectory, logger.ErrorFile))
	require.NoError(t, err)
	assert.Contains(t, string(errorLog), "Error downloading yolov4.weights")
}

func TestProvision_UnreachableHost(t *testing.T) {
	server := newAssetServer(t)
	svc, _ := newTestProvisioner(t, server.URL, func(c *config.Config) {
		c.NamesURL = "http://127.0.0.1:1/coco.names"
	})

	report := svc.Provision(context.Background())

	require.Contains(t, report.Failed, "coco.names")
	assert.Len(t, report.Fetched, 2)
}

func TestProvision_KeepsExistingWhenRefreshDisabled(t *testing.T) {
	server := newAssetServer(t)
	svc, cfg := newTestProvisioner(t, server.URL, func(c *config.Config) {
		c.RefreshAssets = false
	})

	require.NoError(t, os.MkdirAll(cfg.AssetDirectory, 0755))
	require.NoError(t, os.WriteFile(cfg.NetConfigPath(), []byte("local cfg"), 0644))

	report := svc.Provision(context.Background())

	assert.Equal(t, []string{"yolov4.cfg"}, report.Kept)
	assert.Equal(t, []string{"yolov4.weights", "coco.names"}, report.Fetched)

	data, err := os.ReadFile(cfg.NetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "local cfg", string(data))
}
