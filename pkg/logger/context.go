package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const loggerKey ctxKey = iota

// WithContext кладёт *slog.Logger в контекст
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// With дополняет логгер из контекста атрибутами и кладёт обратно.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, scoped(ctx).With(args...))
}

// FromContext извлекает логгер из контекста, а если его нет — возвращает глобальный.
// trace_id/span_id добавляются, если в контексте есть валидный span.
func FromContext(ctx context.Context) *slog.Logger {
	l := scoped(ctx)
	if attrs := AttrsFromCtx(ctx); len(attrs) > 0 {
		args := make([]any, 0, len(attrs))
		for _, a := range attrs {
			args = append(args, a)
		}
		l = l.With(args...)
	}

	return l
}

func scoped(ctx context.Context) *slog.Logger {
	if v, ok := ctx.Value(loggerKey).(*slog.Logger); ok && v != nil {
		return v
	}
	return L()
}
