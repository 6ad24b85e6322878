package metrics

import (
	"github.com/Kargones/rankmgr/internal/pkg/logging"
)

// NewCollector создаёт Collector по конфигурации.
// Отключённые метрики — NopCollector, иначе PrometheusCollector для ранга rank.
func NewCollector(config Config, rank int, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		return NewNopCollector(), nil
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return NewPrometheusCollector(config, rank, logger)
}
