package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/zero-day-ai/socialgraph/internal/graph"
	"github.com/zero-day-ai/socialgraph/internal/observability"
)

// DefaultConfig returns a Config with sensible default values. It carries no
// credentials; those come from the config file or the environment.
func DefaultConfig() *Config {
	return &Config{
		Graph: graph.DefaultConfig(),
		Logging: observability.LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Tracing: observability.TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			Endpoint:    "localhost:4317",
			ServiceName: "socialgraph",
			SampleRate:  1.0,
		},
		Metrics: observability.MetricsConfig{
			Enabled:  false,
			Exporter: "stdout",
			Endpoint: "localhost:4317",
			Interval: 30 * time.Second,
		},
	}
}

// DefaultConfigPath returns ~/.socialgraph/config.yaml, falling back to the
// temporary directory when the user home cannot be determined.
func DefaultConfigPath() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".socialgraph", "config.yaml")
	}
	return filepath.Join(userHome, ".socialgraph", "config.yaml")
}
