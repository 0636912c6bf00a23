package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	traceIDKey = "trace_id"
	spanIDKey  = "span_id"
)

// AttrsFromCtx возвращает trace_id/span_id активного span'а, nil если его нет.
func AttrsFromCtx(ctx context.Context) []slog.Attr {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []slog.Attr{
		slog.String(traceIDKey, sc.TraceID().String()),
		slog.String(spanIDKey, sc.SpanID().String()),
	}
}

// traceHandler дописывает trace_id/span_id из контекста вызова в момент Handle.
// Если логгер уже получил их через With (см. FromContext), второй раз не пишет.
type traceHandler struct {
	slog.Handler
	hasTrace bool
}

func withTrace(h slog.Handler) slog.Handler {
	return traceHandler{Handler: h}
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.hasTrace {
		if attrs := AttrsFromCtx(ctx); len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	has := h.hasTrace
	for _, a := range attrs {
		if a.Key == traceIDKey {
			has = true
		}
	}
	return traceHandler{Handler: h.Handler.WithAttrs(attrs), hasTrace: has}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{Handler: h.Handler.WithGroup(name), hasTrace: h.hasTrace}
}
