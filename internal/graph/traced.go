package graph

import (
	"context"
	"time"

	"github.com/zero-day-ai/socialgraph/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names emitted by TracedClient.
const (
	SpanGraphConnect = "socialgraph.graph.connect"
	SpanGraphClose   = "socialgraph.graph.close"
	SpanGraphRead    = "socialgraph.graph.read"
	SpanGraphWrite   = "socialgraph.graph.write"
)

// Attribute keys recorded on graph spans.
const (
	AttrDBSystem             = "db.system"
	AttrDBName               = "db.name"
	AttrDBStatement          = "db.statement"
	AttrRecordCount          = "socialgraph.graph.record_count"
	AttrNodesCreated         = "socialgraph.graph.nodes_created"
	AttrRelationshipsCreated = "socialgraph.graph.relationships_created"
	AttrRelationshipsDeleted = "socialgraph.graph.relationships_deleted"
	AttrDurationMs           = "socialgraph.graph.duration_ms"
	AttrRetryable            = "socialgraph.graph.retryable"
)

// TracedClient wraps a GraphClient with OpenTelemetry spans.
type TracedClient struct {
	inner    GraphClient
	tracer   trace.Tracer
	database string
}

// NewTracedClient wraps inner. database is only used as a span attribute.
func NewTracedClient(inner GraphClient, tracer trace.Tracer, database string) *TracedClient {
	return &TracedClient{
		inner:    inner,
		tracer:   tracer,
		database: database,
	}
}

func (c *TracedClient) baseAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrDBSystem, "neo4j")}
	if c.database != "" {
		attrs = append(attrs, attribute.String(AttrDBName, c.database))
	}
	return attrs
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool(AttrRetryable, types.IsRetryable(err)))
}

// Connect traces the inner Connect.
func (c *TracedClient) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, SpanGraphConnect, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(c.baseAttributes()...)

	if err := c.inner.Connect(ctx); err != nil {
		recordSpanError(span, err)
		return err
	}
	span.SetStatus(codes.Ok, "connected")
	return nil
}

// Close traces the inner Close.
func (c *TracedClient) Close(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, SpanGraphClose)
	defer span.End()

	if err := c.inner.Close(ctx); err != nil {
		recordSpanError(span, err)
		return err
	}
	return nil
}

// Health is passed through untraced; it is a probe, not a query.
func (c *TracedClient) Health(ctx context.Context) types.HealthStatus {
	return c.inner.Health(ctx)
}

// Read traces the inner Read.
func (c *TracedClient) Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.traceQuery(ctx, SpanGraphRead, cypher, func(ctx context.Context) (QueryResult, error) {
		return c.inner.Read(ctx, cypher, params)
	})
}

// Write traces the inner Write.
func (c *TracedClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return c.traceQuery(ctx, SpanGraphWrite, cypher, func(ctx context.Context) (QueryResult, error) {
		return c.inner.Write(ctx, cypher, params)
	})
}

// traceQuery records the statement but never the parameters, which carry usernames.
func (c *TracedClient) traceQuery(ctx context.Context, name, cypher string, run func(context.Context) (QueryResult, error)) (QueryResult, error) {
	ctx, span := c.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(c.baseAttributes()...)
	span.SetAttributes(attribute.String(AttrDBStatement, cypher))

	start := time.Now()
	result, err := run(ctx)
	span.SetAttributes(attribute.Float64(AttrDurationMs, float64(time.Since(start).Microseconds())/1000))

	if err != nil {
		recordSpanError(span, err)
		return result, err
	}

	span.SetAttributes(
		attribute.Int(AttrRecordCount, len(result.Records)),
		attribute.Int(AttrNodesCreated, result.Summary.NodesCreated),
		attribute.Int(AttrRelationshipsCreated, result.Summary.RelationshipsCreated),
		attribute.Int(AttrRelationshipsDeleted, result.Summary.RelationshipsDeleted),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

var _ GraphClient = (*TracedClient)(nil)
var _ GraphClient = (*Neo4jClient)(nil)
var _ GraphClient = (*MockGraphClient)(nil)
