// Package config handles reading and writing .chatdock/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .chatdock/config.yaml.
type Config struct {
	Version          int           `yaml:"version"`
	APIURL           string        `yaml:"api_url" env:"CHATDOCK_API_URL"`
	Greeting         string        `yaml:"greeting" env:"CHATDOCK_GREETING"`
	Scope            string        `yaml:"scope" env:"CHATDOCK_SCOPE"`
	PersistSession   bool          `yaml:"persist_session" env:"CHATDOCK_PERSIST_SESSION"`
	RequestTimeoutMs int           `yaml:"request_timeout_ms" env:"CHATDOCK_REQUEST_TIMEOUT_MS"` // 0 = transport default
	Storage          StorageConfig `yaml:"storage"`
	Server           ServerConfig  `yaml:"server"`
	Cleanup          CleanupConfig `yaml:"cleanup"`
}

// StorageConfig locates the session database.
type StorageConfig struct {
	Path string `yaml:"path" env:"CHATDOCK_STORAGE_PATH"` // relative to the project root
}

// ServerConfig configures the local development backend.
type ServerConfig struct {
	Addr       string `yaml:"addr" env:"CHATDOCK_SERVER_ADDR"`
	ClinicName string `yaml:"clinic_name" env:"CHATDOCK_CLINIC_NAME"`
}

// CleanupConfig controls pruning of old sessions.
type CleanupConfig struct {
	MaxAgeDays int `yaml:"max_age_days" env:"CHATDOCK_CLEANUP_MAX_AGE_DAYS"`
}

const configDir = ".chatdock"
const configFile = "config.yaml"

// RequestTimeout returns the HTTP client timeout; zero means none.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// StoragePath resolves Storage.Path against dir.
func (c *Config) StoragePath(dir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(dir, c.Storage.Path)
}

// ReadConfig reads .chatdock/config.yaml from the given project directory.
// dir is the project root (not .chatdock/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to .chatdock/config.yaml in the given project directory.
// Creates the .chatdock/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Load builds the effective configuration for dir: defaults, then
// .chatdock/config.yaml if present, then dir/.env and CHATDOCK_* variables.
// Variables already set in the environment win over .env entries.
func Load(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:        1,
		APIURL:         "http://127.0.0.1:8000",
		Greeting:       "oi",
		Scope:          "default",
		PersistSession: true,
		Storage: StorageConfig{
			Path: filepath.Join(configDir, "chatdock.db"),
		},
		Server: ServerConfig{
			Addr:       "127.0.0.1:8000",
			ClinicName: "Clínica Saúde Total",
		},
		Cleanup: CleanupConfig{
			MaxAgeDays: 30,
		},
	}
}
