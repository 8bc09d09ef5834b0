package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultConfigName = "config.json"

	defaultServerURL         = "http://localhost:5000"
	defaultPollIntervalMs    = 5000
	defaultDebounceMs        = 500
	defaultNotificationTTLMs = 4000
)

type Config struct {
	ServerURL         string `json:"server_url"`
	PollIntervalMs    int    `json:"poll_interval_ms"`
	DebounceMs        int    `json:"debounce_ms"`
	NotificationTTLMs int    `json:"notification_ttl_ms"`
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

func (c *Config) NotificationTTL() time.Duration {
	return time.Duration(c.NotificationTTLMs) * time.Millisecond
}

func LoadConfig(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, defaultConfigName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	if cfg.PollIntervalMs <= 0 {
		cfg.PollIntervalMs = defaultPollIntervalMs
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = defaultDebounceMs
	}
	if cfg.NotificationTTLMs <= 0 {
		cfg.NotificationTTLMs = defaultNotificationTTLMs
	}

	return &cfg, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	cfg := Config{
		ServerURL:         defaultServerURL,
		PollIntervalMs:    defaultPollIntervalMs,
		DebounceMs:        defaultDebounceMs,
		NotificationTTLMs: defaultNotificationTTLMs,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return nil, err
	}

	return &cfg, nil
}
