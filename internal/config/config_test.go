package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigCreatesDefaults(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ServerURL != "http://localhost:5000" {
		t.Errorf("unexpected default server URL: %s", cfg.ServerURL)
	}
	if cfg.PollInterval() != 5*time.Second {
		t.Errorf("unexpected poll interval: %v", cfg.PollInterval())
	}
	if cfg.DebounceDelay() != 500*time.Millisecond {
		t.Errorf("unexpected debounce delay: %v", cfg.DebounceDelay())
	}

	if _, err := os.Stat(filepath.Join(tempDir, "config.json")); os.IsNotExist(err) {
		t.Error("config file was not created")
	}
}

func TestLoadConfigReadsExistingAndFillsGaps(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.json")
	if err := os.WriteFile(path, []byte(`{"server_url":"http://pilot:9000"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ServerURL != "http://pilot:9000" {
		t.Errorf("expected configured URL, got %s", cfg.ServerURL)
	}
	if cfg.PollIntervalMs != 5000 {
		t.Errorf("missing poll interval should fall back to default, got %d", cfg.PollIntervalMs)
	}
	if cfg.NotificationTTL() != 4*time.Second {
		t.Errorf("unexpected notification TTL: %v", cfg.NotificationTTL())
	}
}
