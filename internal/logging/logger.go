// Package logging provides structured logging for Luna
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog for Luna
type Logger struct {
	zerolog.Logger
	file *os.File // Keep reference to close later
}

// New creates a new logger with default settings
func New() *Logger {
	w := zerolog.ConsoleWriter{Out: os.Stdout}
	return &Logger{Logger: zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()}
}

// NewWithConfig creates a logger from configuration
func NewWithConfig(level, format, filePath string) *Logger {
	var lvl zerolog.Level
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		lvl = zerolog.InfoLevel
	}

	// Determine output destination
	var output io.Writer = os.Stdout
	var logFile *os.File

	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			output = f
			logFile = f
		}
		// If file open fails, fall back to stdout silently
	}

	if format != "json" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	return &Logger{Logger: logger, file: logFile}
}

// Component returns a child logger tagged with a component name
func (l *Logger) Component(name string) *Logger {
	return &Logger{Logger: l.With().Str("component", name).Logger(), file: nil}
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
