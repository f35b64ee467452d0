package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/newsletter/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, DefaultEndpoint)
	}
	if cfg.Address != DefaultAddress {
		t.Errorf("Address = %q, want %q", cfg.Address, DefaultAddress)
	}
	if cfg.TimeoutDuration() != 10*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 10s", cfg.TimeoutDuration())
	}
	if !cfg.MetricsEnabled() {
		t.Error("metrics should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "N100") {
		t.Errorf("expected N100 for missing config, got %v", err)
	}

	writeConfig(t, tmpDir, `{
  "endpoint": "https://example.com/api/newsletter",
  "timeout": "2s",
  "useServerMessage": true,
  "logLevel": "debug",
  "metrics": {
    "enabled": false
  }
}
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Endpoint != "https://example.com/api/newsletter" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.TimeoutDuration() != 2*time.Second {
		t.Errorf("TimeoutDuration() = %v", cfg.TimeoutDuration())
	}
	if !cfg.UseServerMessage {
		t.Error("UseServerMessage should be true")
	}
	if cfg.MetricsEnabled() {
		t.Error("metrics should be disabled")
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v", cfg.SlogLevel())
	}

	// Defaults fill the rest.
	if cfg.Address != DefaultAddress {
		t.Errorf("Address = %q, want default", cfg.Address)
	}
	if cfg.Title != DefaultTitle {
		t.Errorf("Title = %q, want default", cfg.Title)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if cfg.Path() != filepath.Join(tmpDir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"endpoint": }`)

	if _, err := Load(tmpDir); !errors.HasCode(err, "N101") {
		t.Errorf("expected N101, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative endpoint", func(c *Config) { c.Endpoint = "/api/newsletter" }},
		{"ftp endpoint", func(c *Config) { c.Endpoint = "ftp://example.com/x" }},
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Timeout = "-1s" }},
		{"empty address", func(c *Config) { c.Address = "  " }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.HasCode(err, "N102") {
				t.Errorf("expected N102, got %v", err)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Endpoint = "https://example.org/subscribe"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Endpoint != cfg.Endpoint {
		t.Errorf("Endpoint = %q, want %q", loaded.Endpoint, cfg.Endpoint)
	}
	if loaded.Path() != path {
		t.Errorf("Path() = %q, want %q", loaded.Path(), path)
	}
}

func TestLoadOrDefault(t *testing.T) {
	tmpDir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Path() != "" {
		t.Error("defaults should have no path")
	}

	writeConfig(t, tmpDir, `{"address": ":9090"}`)
	cfg, err = LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Address != ":9090" {
		t.Errorf("Address = %q", cfg.Address)
	}

	if _, err := LoadOrDefault(filepath.Join(tmpDir, "missing.json")); !errors.HasCode(err, "N100") {
		t.Errorf("expected N100 for explicit missing path, got %v", err)
	}
}
