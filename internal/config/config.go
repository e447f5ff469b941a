package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 8080
	defaultDataDir       = "data"
	defaultDownloadDir   = "downloads"
	defaultMaxConcurrent = 1
)

// Environment overrides, applied after the YAML file. VIDQUEUE_API_BASE is
// read by the client package, not here; it configures the other side of the
// wire.
const (
	envPort        = "VIDQUEUE_PORT"
	envDownloadDir = "VIDQUEUE_DOWNLOAD_DIR"
)

// Config describes runtime configuration for the service.
type Config struct {
	Port                   int    `yaml:"port"`
	DataDir                string `yaml:"data_dir"`
	DownloadDir            string `yaml:"download_dir"`
	MaxConcurrentDownloads int    `yaml:"max_concurrent_downloads"`
}

// Default returns the configuration used when no file is present. One
// concurrent download keeps the queue draining strictly in FIFO order.
func Default() Config {
	return Config{
		Port:                   defaultPort,
		DataDir:                defaultDataDir,
		DownloadDir:            defaultDownloadDir,
		MaxConcurrentDownloads: defaultMaxConcurrent,
	}
}

// Load reads YAML config from the provided path. If the file does not exist
// or is empty, defaults are returned with no error. Environment overrides
// are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("empty config path")
	}
	fileData, err := os.ReadFile(path) //nolint:gosec // config path is controlled by deployment
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg)
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(fileData) > 0 {
		if err := yaml.Unmarshal(fileData, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml: %w", err)
		}
	}

	// basic normalization
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = defaultDownloadDir
	}
	// validate concurrency explicitly: values < 1 are not allowed
	if cfg.MaxConcurrentDownloads < 1 {
		return cfg, fmt.Errorf("invalid max_concurrent_downloads: %d (must be >= 1)", cfg.MaxConcurrentDownloads)
	}
	return applyEnv(cfg)
}

func applyEnv(cfg Config) (Config, error) {
	if raw := strings.TrimSpace(os.Getenv(envPort)); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("invalid %s: %q", envPort, raw)
		}
		cfg.Port = port
	}
	if dir := strings.TrimSpace(os.Getenv(envDownloadDir)); dir != "" {
		cfg.DownloadDir = dir
	}
	return cfg, nil
}
