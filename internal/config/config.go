package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultWeightsURL   = "https://github.com/AlexeyAB/darknet/releases/download/yolov4/yolov4.weights"
	DefaultNetConfigURL = "https://raw.githubusercontent.com/AlexeyAB/darknet/master/cfg/yolov4.cfg"
	DefaultNamesURL     = "https://raw.githubusercontent.com/pjreddie/darknet/master/data/coco.names"
)

type Config struct {
	AssetDirectory  string
	WeightsFile     string
	WeightsURL      string
	NetConfigFile   string
	NetConfigURL    string
	NamesFile       string
	NamesURL        string
	RefreshAssets   bool // Usuń i pobierz ponownie pliki modelu przy każdym starcie
	DownloadTimeout int  // Sekundy, 0 = bez limitu

	InputSize           int
	ConfidenceThreshold float64
	NMSScoreThreshold   float64
	NMSThreshold        float64
	TargetClass         string

	CameraDevice int
	WindowName   string
	StopKey      string

	LogDirectory string
}

// Load reads the optional .env file and builds the configuration from the environment.
func Load() *Config {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// Uszkodzony plik .env nie blokuje startu, zostają wartości domyślne
		log.Printf("Could not parse %s: %v", envFile, err)
	}

	return &Config{
		AssetDirectory:  getEnv("ASSET_DIR", "."),
		WeightsFile:     getEnv("WEIGHTS_FILE", "yolov4.weights"),
		WeightsURL:      getEnv("WEIGHTS_URL", DefaultWeightsURL),
		NetConfigFile:   getEnv("NET_CONFIG_FILE", "yolov4.cfg"),
		NetConfigURL:    getEnv("NET_CONFIG_URL", DefaultNetConfigURL),
		NamesFile:       getEnv("NAMES_FILE", "coco.names"),
		NamesURL:        getEnv("NAMES_URL", DefaultNamesURL),
		RefreshAssets:   getEnvAsBool("REFRESH_ASSETS", true),
		DownloadTimeout: getEnvAsInt("DOWNLOAD_TIMEOUT", 0),

		InputSize:           getEnvAsInt("INPUT_SIZE", 416),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.3),
		NMSScoreThreshold:   getEnvAsFloat("NMS_SCORE_THRESHOLD", 0.5),
		NMSThreshold:        getEnvAsFloat("NMS_THRESHOLD", 0.4),
		TargetClass:         getEnv("TARGET_CLASS", "person"),

		CameraDevice: getEnvAsInt("CAMERA_DEVICE", 0),
		WindowName:   getEnv("WINDOW_NAME", "People Counter"),
		StopKey:      getEnv("STOP_KEY", "q"),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
	}
}

// WeightsPath returns the local path of the network weights.
func (c *Config) WeightsPath() string {
	return filepath.Join(c.AssetDirectory, c.WeightsFile)
}

// NetConfigPath returns the local path of the network configuration.
func (c *Config) NetConfigPath() string {
	return filepath.Join(c.AssetDirectory, c.NetConfigFile)
}

// NamesPath returns the local path of the class-name list.
func (c *Config) NamesPath() string {
	return filepath.Join(c.AssetDirectory, c.NamesFile)
}

// StopKeyCode returns the key code that ends continuous processing.
func (c *Config) StopKeyCode() int {
	if c.StopKey == "" {
		return int('q')
	}
	return int(c.StopKey[0])
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
