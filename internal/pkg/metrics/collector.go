// Package metrics собирает метрики координатора рангов и отправляет их
// в Prometheus Pushgateway при завершении процесса.
//
// Паттерны:
//   - Collector interface для абстракции;
//   - NewCollector выбирает реализацию по конфигурации;
//   - NopCollector при отключённых метриках.
package metrics

import (
	"context"
	"time"
)

// Collector определяет интерфейс для сбора метрик координатора.
// Реализации: PrometheusCollector и NopCollector.
type Collector interface {
	// RecordBarrier учитывает один вызов барьера группы.
	RecordBarrier()

	// RecordEmit учитывает строку, выведенную на этом ранге.
	RecordEmit(severity string)

	// RecordTimer учитывает завершённый интервал таймера.
	RecordTimer(name, severity string, duration time.Duration)

	// Push отправляет метрики в Pushgateway.
	// Ошибки логируются внутри реализации, возвращается всегда nil.
	Push(ctx context.Context) error
}
