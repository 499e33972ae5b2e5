// Package logging tests
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	logger := New()
	if logger == nil {
		t.Fatal("New() returned nil")
	}
}

func TestNewWithConfig_Levels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug level", "debug", "text"},
		{"info level", "info", "text"},
		{"warn level", "warn", "text"},
		{"error level", "error", "text"},
		{"unknown level defaults to info", "unknown", "text"},
		{"empty level defaults to info", "", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewWithConfig(tt.level, tt.format, "")
			if logger == nil {
				t.Fatal("NewWithConfig() returned nil")
			}
			logger.Close()
		})
	}
}

func TestNewWithConfig_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"text format", "text"},
		{"json format", "json"},
		{"unknown format defaults to text", "unknown"},
		{"empty format defaults to text", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewWithConfig("info", tt.format, "")
			if logger == nil {
				t.Fatal("NewWithConfig() returned nil")
			}
			logger.Close()
		})
	}
}

func TestNewWithConfig_LogFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "luna-logging-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	logPath := filepath.Join(tmpDir, "luna.log")
	logger := NewWithConfig("info", "json", logPath)
	logger.Info().Str("key", "value").Msg("file output test")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "file output test") {
		t.Error("log file does not contain the written message")
	}
}

func TestComponent(t *testing.T) {
	logger := New()

	child := logger.Component("scheduler")
	if child == nil {
		t.Fatal("Component() returned nil")
	}

	// Should not panic
	child.Info().Msg("message from child logger")
}

func TestLogger_LogMethods(t *testing.T) {
	// Test that log methods don't panic
	logger := New()

	logger.Debug().Str("key", "value").Msg("debug message")
	logger.Info().Str("key", "value").Msg("info message")
	logger.Warn().Str("key", "value").Msg("warn message")
	logger.Error().Str("key", "value").Msg("error message")
}
