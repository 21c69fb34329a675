package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SCRIBE_HOME", home)
	t.Setenv("SCRIBE_BACKEND_BASE_URL", "")
	t.Setenv("SCRIBE_WEB_URL", "")
	t.Setenv("SCRIBE_LOG_LEVEL", "")
	t.Setenv("SCRIBE_LOG_FILE", "")
	t.Setenv("SCRIBE_TIMEOUT", "")
	testChdir(t, t.TempDir()) // no stray .env

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BackendBaseURL != defaultBackendURL {
		t.Errorf("BackendBaseURL = %q", cfg.BackendBaseURL)
	}
	if cfg.Home != home {
		t.Errorf("Home = %q, want %q", cfg.Home, home)
	}
	if cfg.LogFile != filepath.Join(home, "scribe.log") {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Timeout != defaultTimeout {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestLoadPrecedence(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SCRIBE_HOME", home)
	t.Setenv("SCRIBE_LOG_FILE", "")
	t.Setenv("SCRIBE_LOG_LEVEL", "")
	t.Setenv("SCRIBE_WEB_URL", "")
	t.Setenv("SCRIBE_BACKEND_BASE_URL", "https://env.example/")

	yamlBody := "backend_base_url: https://file.example\nweb_url: https://web.example/\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(yamlBody), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BackendBaseURL != "https://env.example" {
		t.Errorf("BackendBaseURL = %q, env should win and trailing slash trimmed", cfg.BackendBaseURL)
	}
	if cfg.WebURL != "https://web.example" {
		t.Errorf("WebURL = %q, want file value", cfg.WebURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want file value", cfg.LogLevel)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SCRIBE_HOME", dir)
	t.Setenv("SCRIBE_WEB_URL", "")
	os.Unsetenv("SCRIBE_WEB_URL") //nolint:errcheck // godotenv does not override set variables
	envPath := filepath.Join(dir, "scribe.env")
	if err := os.WriteFile(envPath, []byte("SCRIBE_WEB_URL=https://dotenv.example\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.WebURL != "https://dotenv.example" {
		t.Errorf("WebURL = %q", cfg.WebURL)
	}

	if _, err := Load(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("explicit missing env file should fail")
	}
}

func TestLoadBadYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SCRIBE_HOME", home)
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("backend_base_url: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadTimeout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("SCRIBE_HOME", home)
	t.Setenv("SCRIBE_TIMEOUT", "")
	testChdir(t, t.TempDir())
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("timeout: 30s\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want file value 30s", cfg.Timeout)
	}

	t.Setenv("SCRIBE_TIMEOUT", "0")
	if cfg, err = Load(""); err != nil || cfg.Timeout != 0 {
		t.Errorf("Load() = %v, %v; want timeout disabled", cfg, err)
	}

	t.Setenv("SCRIBE_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for unparsable SCRIBE_TIMEOUT")
	}
}

// testChdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
