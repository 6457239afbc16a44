package observability

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// LoggingConfig selects the slog handler and minimum level.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=auto text json"`
}

// SlogLevel maps Level to a slog.Level. Unknown values map to info.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Exporter    string  `mapstructure:"exporter" yaml:"exporter" validate:"omitempty,oneof=stdout otlp noop"`
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure    bool    `mapstructure:"insecure" yaml:"insecure"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"min=0,max=1"`
}

// Validate checks exporter-specific requirements.
func (c TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return fmt.Errorf("invalid sample rate: %f (must be between 0.0 and 1.0)", c.SampleRate)
	}
	if strings.ToLower(c.Exporter) == "otlp" && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required for the otlp exporter")
	}
	return nil
}

// MetricsConfig contains metrics export configuration.
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Exporter string        `mapstructure:"exporter" yaml:"exporter" validate:"omitempty,oneof=stdout otlp noop"`
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool          `mapstructure:"insecure" yaml:"insecure"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// Validate checks exporter-specific requirements.
func (c MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.ToLower(c.Exporter) == "otlp" && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required for the otlp exporter")
	}
	if c.Interval < 0 {
		return fmt.Errorf("interval must not be negative")
	}
	return nil
}
