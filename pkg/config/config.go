package config

import (
	"time"

	"github.com/sdejongh/foldermirror/pkg/digest"
	"github.com/sdejongh/foldermirror/pkg/models"
	"github.com/sdejongh/foldermirror/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
	Exclude     []string          `yaml:"exclude"`
}

// SyncConfig holds sync-related settings
type SyncConfig struct {
	Interval time.Duration    `yaml:"interval"` // Delay between passes in watch mode
	Hash     digest.Algorithm `yaml:"hash"`     // "xxh3" or "md5"
	DryRun   bool             `yaml:"dry_run"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	HashWorkers    int    `yaml:"hash_workers"`
	BufferSize     int    `yaml:"buffer_size"`
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "10M", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar on terminals
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"`      // "json" or "text"
	Level      string `yaml:"level"`       // "debug", "info", "warn", "error"
	File       string `yaml:"file"`        // Log file path (empty = stderr)
	MaxSize    int64  `yaml:"max_size"`    // Rotate after this many bytes, 0 = never
	MaxBackups int    `yaml:"max_backups"` // Rotated files to keep
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Interval: 5 * time.Minute,
			Hash:     digest.XXH3,
		},
		Performance: PerformanceConfig{
			HashWorkers: 4,
			BufferSize:  digest.DefaultBufferSize,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "text",
			Level:      "info",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Sync.Interval <= 0 {
		return &models.ValidationError{
			Field:   "sync.interval",
			Message: "must be positive",
		}
	}

	if _, err := digest.ParseAlgorithm(string(c.Sync.Hash)); err != nil {
		return &models.ValidationError{
			Field:   "sync.hash",
			Message: "must be 'xxh3' or 'md5'",
		}
	}

	if c.Performance.HashWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.hash_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 4096 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 4096 bytes",
		}
	}

	if _, err := ratelimit.ParseBandwidth(c.Performance.BandwidthLimit); err != nil {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: err.Error(),
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "rotation settings must not be negative",
		}
	}

	return nil
}

// BandwidthBytes returns the configured bandwidth limit in bytes per second
func (c *Config) BandwidthBytes() int64 {
	limit, _ := ratelimit.ParseBandwidth(c.Performance.BandwidthLimit)
	return limit
}
