package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/zero-day-ai/socialgraph/pkg/version"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"
)

const (
	defaultBatchTimeout = 5 * time.Second
	defaultServiceName  = "socialgraph"

	// TracerName is the instrumentation name used for every tracer.
	TracerName = "github.com/zero-day-ai/socialgraph"
)

// TracingOption is a functional option for configuring tracing initialization.
type TracingOption func(*tracingOptions)

type tracingOptions struct {
	sampler      sdktrace.Sampler
	resource     *resource.Resource
	batchTimeout time.Duration
	writer       io.Writer
}

// WithSampler overrides the ratio sampler derived from SampleRate.
func WithSampler(sampler sdktrace.Sampler) TracingOption {
	return func(o *tracingOptions) {
		o.sampler = sampler
	}
}

// WithResource sets the resource describing this process.
func WithResource(res *resource.Resource) TracingOption {
	return func(o *tracingOptions) {
		o.resource = res
	}
}

// WithBatchTimeout sets the maximum time between batch exports.
func WithBatchTimeout(timeout time.Duration) TracingOption {
	return func(o *tracingOptions) {
		o.batchTimeout = timeout
	}
}

// WithTraceWriter sets where the stdout exporter writes. Defaults to stderr.
func WithTraceWriter(w io.Writer) TracingOption {
	return func(o *tracingOptions) {
		o.writer = w
	}
}

// InitTracing builds a tracer provider for cfg and installs it globally.
// Supported exporters are "stdout", "otlp" and "noop".
//
// When tracing is disabled or the exporter is "noop" the returned provider
// has no span processors and records nothing.
func InitTracing(ctx context.Context, cfg TracingConfig, opts ...TracingOption) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled {
		return sdktrace.NewTracerProvider(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, WrapObservabilityError(ErrInvalidConfig, "invalid tracing configuration", err)
	}

	options := &tracingOptions{
		batchTimeout: defaultBatchTimeout,
		writer:       os.Stderr,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.sampler == nil {
		options.sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}

	if options.resource == nil {
		res, err := newResource(ctx, cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		options.resource = res
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch strings.ToLower(cfg.Exporter) {
	case "", "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(options.writer),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, WrapObservabilityError(ErrExporterConnection, "failed to create stdout exporter", err)
		}

	case "otlp":
		otlpOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
		}
		if cfg.Insecure {
			otlpOpts = append(otlpOpts, otlptracegrpc.WithInsecure())
		} else {
			otlpOpts = append(otlpOpts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(nil)))
		}

		exporter, err = otlptracegrpc.New(ctx, otlpOpts...)
		if err != nil {
			return nil, WrapObservabilityError(ErrExporterConnection,
				fmt.Sprintf("failed to connect to %s", cfg.Endpoint), err)
		}

	case "noop":
		return sdktrace.NewTracerProvider(), nil

	default:
		return nil, NewObservabilityError(ErrInvalidConfig, fmt.Sprintf("unsupported tracing exporter: %s", cfg.Exporter))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(options.batchTimeout),
		),
		sdktrace.WithSampler(options.sampler),
		sdktrace.WithResource(options.resource),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}

// ShutdownTracing flushes pending spans and stops the provider. It should be
// called before the process exits.
func ShutdownTracing(ctx context.Context, provider *sdktrace.TracerProvider) error {
	if provider == nil {
		return nil
	}
	if err := provider.Shutdown(ctx); err != nil {
		if ctx.Err() != nil {
			return WrapObservabilityError(ErrShutdownTimeout, "tracer provider shutdown timed out", err)
		}
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// newResource describes this process to telemetry backends.
func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	// resource.New avoids schema URL conflicts with resource.Default()
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Version),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, WrapObservabilityError(ErrExporterConnection, "failed to create resource", err)
	}
	return res, nil
}
