package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestInitMetrics_Disabled(t *testing.T) {
	provider, err := InitMetrics(context.Background(), MetricsConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.IsType(t, noop.MeterProvider{}, provider)
	assert.NoError(t, ShutdownMetrics(context.Background(), provider))
}

func TestInitMetrics_Noop(t *testing.T) {
	provider, err := InitMetrics(context.Background(), MetricsConfig{Enabled: true, Exporter: "noop"}, nil)
	require.NoError(t, err)
	assert.IsType(t, noop.MeterProvider{}, provider)
}

func TestInitMetrics_Stdout(t *testing.T) {
	var buf bytes.Buffer
	provider, err := InitMetrics(context.Background(), MetricsConfig{
		Enabled:  true,
		Exporter: "stdout",
		Interval: time.Hour,
	}, &buf)
	require.NoError(t, err)
	require.IsType(t, &sdkmetric.MeterProvider{}, provider)

	counter, err := provider.Meter(TracerName).Int64Counter("socialgraph.batch.items")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	shutdown(t, func(ctx context.Context) error { return ShutdownMetrics(ctx, provider) })
	assert.Contains(t, buf.String(), "socialgraph.batch.items")
}

func TestInitMetrics_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  MetricsConfig
	}{
		{"otlp without endpoint", MetricsConfig{Enabled: true, Exporter: "otlp"}},
		{"negative interval", MetricsConfig{Enabled: true, Exporter: "stdout", Interval: -time.Second}},
		{"unknown exporter", MetricsConfig{Enabled: true, Exporter: "prometheus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitMetrics(context.Background(), tt.cfg, nil)
			assert.Error(t, err)
		})
	}
}
