package tracing

import "context"

// NewNopTracerProvider возвращает nop shutdown function для выключенного трейсинга.
func NewNopTracerProvider() func(context.Context) error {
	return func(_ context.Context) error { return nil }
}
