package app

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
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		AssetDirectory:  filepath.Join(dir, "assets"),
		WeightsFile:     "yolov4.weights",
		WeightsURL:      baseURL + "/yolov4.weights",
		NetConfigFile:   "yolov4.cfg",
		NetConfigURL:    baseURL + "/yolov4.cfg",
		NamesFile:       "coco.names",
		NamesURL:        baseURL + "/coco.names",
		RefreshAssets:   true,
		DownloadTimeout: 5,
		LogDirectory:    filepath.Join(dir, "logs"),
	}
}

func TestFetchAssets_ReportsEachAsset(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/yolov4.cfg", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[net]\n"))
	})
	mux.HandleFunc("/coco.names", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("person\n"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := testConfig(t, server.URL)
	application, err := NewApp(cfg)
	require.NoError(t, err)
	defer application.Close()

	report := application.FetchAssets(context.Background())

	assert.False(t, report.OK())
	assert.ElementsMatch(t, []string{"yolov4.cfg", "coco.names"}, report.Fetched)
	assert.Contains(t, report.Failed, "yolov4.weights")

	names, err := os.ReadFile(cfg.NamesPath())
	require.NoError(t, err)
	assert.Equal(t, "person\n", string(names))
}

func TestStart_FailsWithoutModel(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	application, err := NewApp(testConfig(t, server.URL))
	require.NoError(t, err)
	defer application.Close()

	err = application.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights file not found")
	assert.Nil(t, application.Manager())
}
