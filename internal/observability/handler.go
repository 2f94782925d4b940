package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// traceContextHandler wraps a base slog.Handler and stamps trace_id/span_id
// onto every record whose context carries a valid OTel span context, so a
// log line can be pivoted to the distributed trace that produced it without
// every call site having to remember to add the attributes itself.
type traceContextHandler struct {
	base slog.Handler
}

func newTraceContextHandler(base slog.Handler) *traceContextHandler {
	return &traceContextHandler{base: base}
}

func (h *traceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *traceContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.base.Handle(ctx, record)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{base: h.base.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{base: h.base.WithGroup(name)}
}
