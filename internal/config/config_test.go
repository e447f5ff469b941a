package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port == 0 || cfg.DataDir == "" || cfg.DownloadDir == "" || cfg.MaxConcurrentDownloads < 1 {
		t.Fatalf("default config invalid: %+v", cfg)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("not_exists.yml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults for missing file, got %+v", cfg)
	}
}

func TestLoadReadsAndValidates(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "cfg.yml")
	content := []byte("port: 9090\ndownload_dir: media\nmax_concurrent_downloads: 2\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 || cfg.DownloadDir != "media" || cfg.MaxConcurrentDownloads != 2 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.DataDir != "data" {
		t.Fatalf("omitted fields not defaulted: %+v", cfg)
	}
}

func TestLoadRejectsInvalidConcurrency(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "cfg.yml")
	if err := os.WriteFile(path, []byte("max_concurrent_downloads: 0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid concurrency")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIDQUEUE_PORT", "9191")
	t.Setenv("VIDQUEUE_DOWNLOAD_DIR", "/tmp/media")

	cfg, err := Load("not_exists.yml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9191 || cfg.DownloadDir != "/tmp/media" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestEnvRejectsBadPort(t *testing.T) {
	t.Setenv("VIDQUEUE_PORT", "eighty")
	if _, err := Load("not_exists.yml"); err == nil {
		t.Fatalf("expected error for non-numeric port")
	}
}
