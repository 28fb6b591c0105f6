// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBDriver is sqlite or postgres. DBDSN is passed to the driver as is;
	// empty selects the driver's local default.
	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// ShowTTLSeconds is how long a competitor stays on the display screen.
	ShowTTLSeconds int `koanf:"show_ttl_seconds"`

	// LogBufferSize bounds the activity log.
	LogBufferSize int `koanf:"log_buffer_size"`

	// RequestTimeoutMS caps each HTTP request. Zero disables the cap.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every metric name; empty keeps "aeroscore".
	MetricsNamespace string `koanf:"metrics_namespace"`
	// MetricsLabels are constant labels on every series, e.g. {event: nationals-2026}.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		DBDriver:         DriverSQLite,
		ShowTTLSeconds:   20,
		LogBufferSize:    100,
		RequestTimeoutMS: 5_000,
		MetricsEnabled:   true,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres:
		return fmt.Errorf("%w: db_driver must be %s or %s, got %q", ErrInvalidConfig, DriverSQLite, DriverPostgres, c.DBDriver)
	case c.ShowTTLSeconds <= 0:
		return fmt.Errorf("%w: show_ttl_seconds must be positive", ErrInvalidConfig)
	case c.LogBufferSize <= 0:
		return fmt.Errorf("%w: log_buffer_size must be positive", ErrInvalidConfig)
	case c.RequestTimeoutMS < 0:
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// ShowTTL is ShowTTLSeconds as a duration.
func (c *Config) ShowTTL() time.Duration {
	return time.Duration(c.ShowTTLSeconds) * time.Second
}

// RequestTimeout is RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
