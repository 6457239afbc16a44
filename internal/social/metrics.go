package social

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names
const (
	MetricBatchItems   = "socialgraph.batch.items"
	MetricItemDuration = "socialgraph.batch.item.duration"
)

// Metrics holds the instruments recorded for every batch item.
// A nil *Metrics records nothing.
type Metrics struct {
	items    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the batch instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	items, err := meter.Int64Counter(MetricBatchItems,
		metric.WithDescription("Batch items processed, by operation and outcome"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", MetricBatchItems, err)
	}

	duration, err := meter.Float64Histogram(MetricItemDuration,
		metric.WithDescription("Wall time of a single batch item, including the database round-trip"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", MetricItemDuration, err)
	}

	return &Metrics{items: items, duration: duration}, nil
}

func (m *Metrics) record(ctx context.Context, op Operation, res ItemResult) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op.String()),
		attribute.String("outcome", res.Outcome.String()),
	)
	m.items.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(res.Duration.Microseconds())/1000, attrs)
}
