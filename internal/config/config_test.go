// Package config tests
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	// Check version
	if cfg.Version != 1 {
		t.Errorf("expected Version=1, got %d", cfg.Version)
	}

	// Check generation defaults
	if cfg.Generation.Engine != "ollama" {
		t.Errorf("expected Generation.Engine='ollama', got %q", cfg.Generation.Engine)
	}
	if cfg.Generation.Model != "llama3:8b" {
		t.Errorf("expected Generation.Model='llama3:8b', got %q", cfg.Generation.Model)
	}
	if cfg.Generation.URL != "http://localhost:11434" {
		t.Errorf("expected Generation.URL='http://localhost:11434', got %q", cfg.Generation.URL)
	}
	if cfg.Generation.ReflectTimeout() != 30*time.Second {
		t.Errorf("expected ReflectTimeout=30s, got %v", cfg.Generation.ReflectTimeout())
	}

	// Check schedule defaults
	if cfg.Schedule.PingWindowStart != "09:00" {
		t.Errorf("expected PingWindowStart='09:00', got %q", cfg.Schedule.PingWindowStart)
	}
	if cfg.Schedule.PingWindowEnd != "21:00" {
		t.Errorf("expected PingWindowEnd='21:00', got %q", cfg.Schedule.PingWindowEnd)
	}
	if cfg.Schedule.MinDailyPings != 2 || cfg.Schedule.MaxDailyPings != 4 {
		t.Errorf("expected 2-4 daily pings, got %d-%d", cfg.Schedule.MinDailyPings, cfg.Schedule.MaxDailyPings)
	}
	if cfg.Schedule.PollInterval() != 60*time.Second {
		t.Errorf("expected PollInterval=60s, got %v", cfg.Schedule.PollInterval())
	}
	if cfg.Schedule.ActivityThreshold != 5 {
		t.Errorf("expected ActivityThreshold=5, got %d", cfg.Schedule.ActivityThreshold)
	}

	// Check notify defaults
	if !cfg.Notify.Enabled {
		t.Error("expected Notify.Enabled=true by default")
	}
	if cfg.Notify.Command != "notify-send" {
		t.Errorf("expected Notify.Command='notify-send', got %q", cfg.Notify.Command)
	}

	// Check logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Logging.Level='info', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected Logging.Format='text', got %q", cfg.Logging.Format)
	}
}

func TestLoadSave(t *testing.T) {
	// Create a temporary directory
	tmpDir, err := os.MkdirTemp("", "luna-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cfgPath := filepath.Join(tmpDir, "config.yaml")

	// Create and save a config
	cfg := Default()
	cfg.Storage.Path = "/var/lib/luna/memory.db"
	cfg.Generation.Model = "llama3:70b"
	cfg.Schedule.MaxDailyPings = 6
	cfg.Logging.Level = "debug"

	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	// Load the config back
	loaded, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify loaded values
	if loaded.Storage.Path != "/var/lib/luna/memory.db" {
		t.Errorf("expected Storage.Path='/var/lib/luna/memory.db', got %q", loaded.Storage.Path)
	}
	if loaded.Generation.Model != "llama3:70b" {
		t.Errorf("expected Generation.Model='llama3:70b', got %q", loaded.Generation.Model)
	}
	if loaded.Schedule.MaxDailyPings != 6 {
		t.Errorf("expected Schedule.MaxDailyPings=6, got %d", loaded.Schedule.MaxDailyPings)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level='debug', got %q", loaded.Logging.Level)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error when loading non-existent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	// Create a temporary file with invalid YAML
	tmpDir, err := os.MkdirTemp("", "luna-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cfgPath := filepath.Join(tmpDir, "bad-config.yaml")
	if err := os.WriteFile(cfgPath, []byte("invalid: yaml: content: ["), 0644); err != nil {
		t.Fatalf("failed to write bad config: %v", err)
	}

	_, err = Load(cfgPath)
	if err == nil {
		t.Error("expected error when loading invalid YAML")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "luna-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Path with nested directory that doesn't exist
	cfgPath := filepath.Join(tmpDir, "nested", "subdir", "config.yaml")

	cfg := Default()
	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("Save() failed to create nested directories: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		t.Fatal("config file was not created in nested directory")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "luna-config-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cfgPath := filepath.Join(tmpDir, "partial.yaml")
	partial := "generation:\n  model: mistral:7b\n"
	if err := os.WriteFile(cfgPath, []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write partial config: %v", err)
	}

	loaded, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.Generation.Model != "mistral:7b" {
		t.Errorf("expected overridden model 'mistral:7b', got %q", loaded.Generation.Model)
	}
	// Untouched sections keep defaults
	if loaded.Schedule.PingWindowStart != "09:00" {
		t.Errorf("expected default PingWindowStart, got %q", loaded.Schedule.PingWindowStart)
	}
	if loaded.Generation.PromptTimeoutSecs != 20 {
		t.Errorf("expected default PromptTimeoutSecs=20, got %d", loaded.Generation.PromptTimeoutSecs)
	}
}
