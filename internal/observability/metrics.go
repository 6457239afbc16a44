package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const defaultMetricsInterval = 30 * time.Second

// InitMetrics returns a meter provider for cfg and installs it globally.
// Supported exporters are "stdout", "otlp" and "noop".
//
// Providers returned for enabled configurations must be flushed with
// ShutdownMetrics before exit.
//
//	provider, err := InitMetrics(ctx, cfg, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	defer ShutdownMetrics(ctx, provider)
func InitMetrics(ctx context.Context, cfg MetricsConfig, w io.Writer) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		return noop.NewMeterProvider(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, WrapObservabilityError(ErrInvalidConfig, "invalid metrics configuration", err)
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = defaultMetricsInterval
	}

	var (
		provider metric.MeterProvider
		err      error
	)
	switch strings.ToLower(cfg.Exporter) {
	case "", "stdout":
		provider, err = initStdoutProvider(w, interval)
	case "otlp":
		provider, err = initOTLPProvider(ctx, cfg, interval)
	case "noop":
		return noop.NewMeterProvider(), nil
	default:
		return nil, NewObservabilityError(ErrInvalidConfig, fmt.Sprintf("unsupported metrics exporter: %s", cfg.Exporter))
	}
	if err != nil {
		return nil, err
	}

	otel.SetMeterProvider(provider)
	return provider, nil
}

// initStdoutProvider writes collected metrics to w periodically and on shutdown.
func initStdoutProvider(w io.Writer, interval time.Duration) (metric.MeterProvider, error) {
	if w == nil {
		w = os.Stderr
	}

	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(w),
		stdoutmetric.WithPrettyPrint(),
	)
	if err != nil {
		return nil, WrapObservabilityError(ErrExporterConnection, "failed to create stdout metric exporter", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	), nil
}

// initOTLPProvider pushes metrics to an OTLP collector via gRPC.
func initOTLPProvider(ctx context.Context, cfg MetricsConfig, interval time.Duration) (metric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, WrapObservabilityError(ErrExporterConnection,
			fmt.Sprintf("failed to connect to %s", cfg.Endpoint), err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	), nil
}

// ShutdownMetrics flushes and stops provider when it is an SDK provider.
// Noop providers are ignored.
func ShutdownMetrics(ctx context.Context, provider metric.MeterProvider) error {
	sdkProvider, ok := provider.(*sdkmetric.MeterProvider)
	if !ok || sdkProvider == nil {
		return nil
	}
	if err := sdkProvider.Shutdown(ctx); err != nil {
		if ctx.Err() != nil {
			return WrapObservabilityError(ErrShutdownTimeout, "meter provider shutdown timed out", err)
		}
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
