package metrics

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Kargones/rankmgr/internal/pkg/logging"
	"github.com/Kargones/rankmgr/internal/pkg/urlutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "rankmgr"

// PrometheusCollector реализует Collector с Prometheus метриками.
// Каждый ранг пушит свою группу (job, instance, rank), поэтому
// ранги не перезаписывают метрики друг друга.
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry

	barriers      prometheus.Counter
	linesEmitted  *prometheus.CounterVec
	timerDuration *prometheus.HistogramVec

	instance string
	rank     string
}

// NewPrometheusCollector создаёт PrometheusCollector и регистрирует метрики:
//   - rankmgr_barrier_total (counter)
//   - rankmgr_lines_emitted_total{severity} (counter)
//   - rankmgr_timer_duration_seconds{timer,severity} (histogram)
func NewPrometheusCollector(config Config, rank int, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	registry := prometheus.NewRegistry()

	barriers := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "barrier_total",
		Help:      "Total number of group barriers entered by this rank",
	})

	linesEmitted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_emitted_total",
			Help:      "Total number of coordinator lines written by this rank",
		},
		[]string{"severity"},
	)

	// от миллисекунд до часа: таймеры ставятся вручную вокруг крупных фаз
	timerDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "timer_duration_seconds",
			Help:      "Duration of stopped coordinator timers in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60, 300, 900, 3600},
		},
		[]string{"timer", "severity"},
	)

	collectors := []prometheus.Collector{barriers, linesEmitted, timerDuration}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:        config,
		logger:        logger,
		registry:      registry,
		barriers:      barriers,
		linesEmitted:  linesEmitted,
		timerDuration: timerDuration,
		instance:      instance,
		rank:          strconv.Itoa(rank),
	}, nil
}

// RecordBarrier увеличивает счётчик барьеров.
func (c *PrometheusCollector) RecordBarrier() {
	c.barriers.Inc()
}

// RecordEmit увеличивает счётчик строк для уровня severity.
func (c *PrometheusCollector) RecordEmit(severity string) {
	c.linesEmitted.WithLabelValues(severity).Inc()
}

// maxLabelLength ограничивает длину label от cardinality explosion.
const maxLabelLength = 128

// sanitizeLabel обрезает значение по рунам и заменяет контрольные символы,
// которые ломают Prometheus text format.
func sanitizeLabel(value string) string {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return '_'
		}
		return r
	}, value)

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// RecordTimer записывает длительность остановленного таймера.
func (c *PrometheusCollector) RecordTimer(name, severity string, duration time.Duration) {
	name = sanitizeLabel(name)
	c.timerDuration.WithLabelValues(name, severity).Observe(duration.Seconds())

	c.logger.Debug("metrics: timer recorded",
		"timer", name,
		"severity", severity,
		"duration_ms", duration.Milliseconds(),
	)
}

// Push отправляет метрики в Pushgateway.
// Возвращает nil даже при ошибке: метрики не должны ломать завершение группы.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: pushgateway URL not configured, skipping push")
		return nil
	}

	select {
	case <-ctx.Done():
		c.logger.Debug("metrics push отменён")
		return nil
	default:
	}

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance).
		Grouping("rank", c.rank)

	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if err := pusher.PushContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
		"rank", c.rank,
	)
	return nil
}

// Registry возвращает внутренний registry. Используется в тестах.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}
