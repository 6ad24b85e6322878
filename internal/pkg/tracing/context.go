package tracing

import "context"

// traceIDKey — ключ trace ID группы в context.
type traceIDKey struct{}

// WithTraceID возвращает context с trace ID группы.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext извлекает trace ID группы.
// Возвращает пустую строку если trace ID не установлен или ctx == nil.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}
