package metrics

import (
	"context"
	"time"
)

// NopCollector — no-op реализация Collector.
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

// RecordBarrier ничего не делает.
func (c *NopCollector) RecordBarrier() {}

// RecordEmit ничего не делает.
func (c *NopCollector) RecordEmit(string) {}

// RecordTimer ничего не делает.
func (c *NopCollector) RecordTimer(string, string, time.Duration) {}

// Push всегда возвращает nil.
func (c *NopCollector) Push(context.Context) error {
	return nil
}
