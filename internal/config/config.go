// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and GAZE_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// TickIntervalMS is the pipeline polling cadence.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// FrameQueueSize bounds the in-memory frame queue.
	FrameQueueSize int `koanf:"frame_queue_size"`

	// CatalogFile points at a YAML symbol catalog. Empty uses the built-in one.
	CatalogFile string `koanf:"catalog_file"`

	// DefaultCategory is the category shown at startup.
	DefaultCategory string `koanf:"default_category"`

	// SinkBufferSize is the per-subscriber buffer of the event hub.
	SinkBufferSize int `koanf:"sink_buffer_size"`

	// HistorySize is how many selection events GET /selections can return.
	HistorySize int `koanf:"history_size"`

	// WSWriteTimeoutMS bounds each websocket write.
	WSWriteTimeoutMS int `koanf:"ws_write_timeout_ms"`

	// MaxFrameBytes caps the size of one submitted frame.
	MaxFrameBytes int64 `koanf:"max_frame_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9090",
		TickIntervalMS:   100,
		FrameQueueSize:   64,
		DefaultCategory:  "Home",
		SinkBufferSize:   32,
		HistorySize:      256,
		WSWriteTimeoutMS: 2000,
		MaxFrameBytes:    1 << 20,
	}
}

// TickInterval returns TickIntervalMS as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// WSWriteTimeout returns WSWriteTimeoutMS as a duration.
func (c *Config) WSWriteTimeout() time.Duration {
	return time.Duration(c.WSWriteTimeoutMS) * time.Millisecond
}

// Validate checks the values a running service depends on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive, got %d", ErrInvalidConfig, c.TickIntervalMS)
	case c.FrameQueueSize <= 0:
		return fmt.Errorf("%w: frame_queue_size must be positive, got %d", ErrInvalidConfig, c.FrameQueueSize)
	case c.SinkBufferSize <= 0:
		return fmt.Errorf("%w: sink_buffer_size must be positive, got %d", ErrInvalidConfig, c.SinkBufferSize)
	case c.HistorySize <= 0:
		return fmt.Errorf("%w: history_size must be positive, got %d", ErrInvalidConfig, c.HistorySize)
	case c.WSWriteTimeoutMS <= 0:
		return fmt.Errorf("%w: ws_write_timeout_ms must be positive, got %d", ErrInvalidConfig, c.WSWriteTimeoutMS)
	case c.MaxFrameBytes <= 0:
		return fmt.Errorf("%w: max_frame_bytes must be positive, got %d", ErrInvalidConfig, c.MaxFrameBytes)
	case strings.TrimSpace(c.DefaultCategory) == "":
		return fmt.Errorf("%w: default_category must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
