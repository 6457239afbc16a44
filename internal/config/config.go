package config

import (
	"github.com/zero-day-ai/socialgraph/internal/graph"
	"github.com/zero-day-ai/socialgraph/internal/observability"
)

// Config is the complete socialgraph configuration.
type Config struct {
	Graph   graph.GraphClientConfig     `mapstructure:"graph" yaml:"graph"`
	Logging observability.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Metrics observability.MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}
