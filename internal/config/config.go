// Package config resolves scribe's settings from defaults, an optional
// config file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/scribedesk/scribe/internal/storage"
)

// Config holds the client configuration.
type Config struct {
	// BackendBaseURL is the API origin; requests go to <BackendBaseURL>/api/<route>.
	BackendBaseURL string `yaml:"backend_base_url"`
	// WebURL is the browser front end opened by "scribe open".
	WebURL string `yaml:"web_url"`
	// Home holds the token, pending destination, config file and log.
	Home     string `yaml:"-"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	// Timeout bounds each backend request, uploads included. 0 disables it.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	defaultBackendURL = "http://localhost:5000"
	defaultWebURL     = "http://localhost:5173"
	defaultTimeout    = 10 * time.Minute
)

// Load builds a Config. envFile may be empty, in which case ".env" in the
// working directory is tried; a missing env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("config.Load: env file: %w", err)
	}

	cfg := &Config{
		BackendBaseURL: defaultBackendURL,
		WebURL:         defaultWebURL,
		Home:           getEnv("SCRIBE_HOME", storage.DefaultDir()),
		LogLevel:       "info",
		Timeout:        defaultTimeout,
	}

	if cfg.Home != "" {
		if err := cfg.readFile(filepath.Join(cfg.Home, "config.yaml")); err != nil {
			return nil, err
		}
	}

	cfg.BackendBaseURL = getEnv("SCRIBE_BACKEND_BASE_URL", cfg.BackendBaseURL)
	cfg.WebURL = getEnv("SCRIBE_WEB_URL", cfg.WebURL)
	cfg.LogLevel = getEnv("SCRIBE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("SCRIBE_LOG_FILE", cfg.LogFile)
	if v := os.Getenv("SCRIBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("config.Load: SCRIBE_TIMEOUT %q: want a duration such as 30s", v)
		}
		cfg.Timeout = d
	}
	if cfg.LogFile == "" && cfg.Home != "" {
		cfg.LogFile = filepath.Join(cfg.Home, "scribe.log")
	}
	cfg.BackendBaseURL = strings.TrimRight(cfg.BackendBaseURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")
	return cfg, nil
}

// readFile overlays values from a yaml file. A missing file is fine.
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config.Load: parse %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
