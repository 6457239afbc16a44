// Package observability sets up logging, tracing and metrics for socialgraph.
//
// # Logging
//
// NewLogger returns a slog.Logger whose records carry a per-invocation run_id
// and, when logged with a context holding a recording span, the trace_id and
// span_id of that span. Attributes named like password, secret or token are
// always redacted. Format "auto" selects text on a terminal and JSON otherwise.
//
// # Tracing
//
// InitTracing installs a global tracer provider exporting to stdout or an
// OTLP collector:
//
//	tp, err := observability.InitTracing(ctx, cfg.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer observability.ShutdownTracing(ctx, tp)
//
// # Metrics
//
// InitMetrics installs a global meter provider. Disabled configurations get a
// noop provider so instruments can always be created.
package observability
