// Package config handles Luna's configuration loading and persistence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for Luna.
type Config struct {
	Version    int              `yaml:"version"`
	Storage    StorageConfig    `yaml:"storage"`
	Generation GenerationConfig `yaml:"generation"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Notify     NotifyConfig     `yaml:"notify"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// StorageConfig configures the SQLite store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// GenerationConfig configures the local text-generation engine.
type GenerationConfig struct {
	Engine string `yaml:"engine"`
	Model  string `yaml:"model"`
	URL    string `yaml:"url"`

	// Per-call timeouts in seconds. Generation is the only long-latency
	// operation in the process; every call site is bounded by one of these.
	PromptTimeoutSecs   int `yaml:"prompt_timeout_secs"`
	ResponseTimeoutSecs int `yaml:"response_timeout_secs"`
	ReflectTimeoutSecs  int `yaml:"reflect_timeout_secs"`
}

// PromptTimeout returns the timeout for prompt-assembly generation calls.
func (g GenerationConfig) PromptTimeout() time.Duration {
	return time.Duration(g.PromptTimeoutSecs) * time.Second
}

// ResponseTimeout returns the timeout for response and learning calls.
func (g GenerationConfig) ResponseTimeout() time.Duration {
	return time.Duration(g.ResponseTimeoutSecs) * time.Second
}

// ReflectTimeout returns the timeout for reflection-cycle calls.
func (g GenerationConfig) ReflectTimeout() time.Duration {
	return time.Duration(g.ReflectTimeoutSecs) * time.Second
}

// ScheduleConfig configures the periodic loops.
type ScheduleConfig struct {
	PingWindowStart   string  `yaml:"ping_window_start"` // "09:00"
	PingWindowEnd     string  `yaml:"ping_window_end"`   // "21:00"
	MinDailyPings     int     `yaml:"min_daily_pings"`
	MaxDailyPings     int     `yaml:"max_daily_pings"`
	PollIntervalSecs  int     `yaml:"poll_interval_secs"`
	ActivityThreshold int     `yaml:"activity_threshold"` // min samples before observation cycles
	ReflectionChance  float64 `yaml:"reflection_chance"`  // spontaneous reflection probability per hour
	SynthesisHours    int     `yaml:"synthesis_hours"`    // pattern-analysis interval
	NightlyAt         string  `yaml:"nightly_at"`         // "23:30"
}

// PollInterval returns the activity poll interval.
func (s ScheduleConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSecs) * time.Second
}

// NotifyConfig configures the desktop notification sink.
type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Command string `yaml:"command"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Version: 1,
		Storage: StorageConfig{
			Path: filepath.Join(defaultDataDir(), "luna.db"),
		},
		Generation: GenerationConfig{
			Engine:              "ollama",
			Model:               "llama3:8b",
			URL:                 "http://localhost:11434",
			PromptTimeoutSecs:   20,
			ResponseTimeoutSecs: 25,
			ReflectTimeoutSecs:  30,
		},
		Schedule: ScheduleConfig{
			PingWindowStart:   "09:00",
			PingWindowEnd:     "21:00",
			MinDailyPings:     2,
			MaxDailyPings:     4,
			PollIntervalSecs:  60,
			ActivityThreshold: 5,
			ReflectionChance:  0.3,
			SynthesisHours:    3,
			NightlyAt:         "23:30",
		},
		Notify: NotifyConfig{
			Enabled: true,
			Command: "notify-send",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// defaultDataDir returns the directory for Luna's data files.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".luna"
	}
	return filepath.Join(home, ".luna")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads a configuration file. An empty path loads the default location.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to disk, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
