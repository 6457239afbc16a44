package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/term"
)

// RedactedValue replaces sensitive attribute values.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]bool{
	"password":   true,
	"secret":     true,
	"token":      true,
	"credential": true,
	"apikey":     true,
	"auth":       true,
}

// NewLogger builds the process logger. Every record carries run_id, and
// records logged with a context holding a valid span also carry trace_id and
// span_id. The returned run id identifies this invocation.
func NewLogger(cfg LoggingConfig, w io.Writer) (*slog.Logger, string) {
	opts := &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: redactAttr,
	}

	var handler slog.Handler
	if useJSON(cfg.Format, w) {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	runID := uuid.NewString()
	logger := slog.New(NewTraceHandler(handler)).With(slog.String("run_id", runID))
	return logger, runID
}

// useJSON resolves format "auto" to text on a terminal and JSON otherwise.
func useJSON(format string, w io.Writer) bool {
	switch strings.ToLower(format) {
	case "json":
		return true
	case "text":
		return false
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return false
	}
	return true
}

// redactAttr hides values of sensitive keys regardless of level.
func redactAttr(groups []string, a slog.Attr) slog.Attr {
	normalized := strings.ToLower(strings.ReplaceAll(a.Key, "_", ""))
	if sensitiveKeys[normalized] {
		return slog.String(a.Key, RedactedValue)
	}
	return a
}

// TraceHandler adds trace_id and span_id from the record's context.
type TraceHandler struct {
	inner slog.Handler
}

// NewTraceHandler wraps inner with trace correlation.
func NewTraceHandler(inner slog.Handler) *TraceHandler {
	return &TraceHandler{inner: inner}
}

func (h *TraceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.inner.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{inner: h.inner.WithGroup(name)}
}
