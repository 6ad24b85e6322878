package metrics

import (
	"net/url"
	"time"
)

// Config содержит настройки Prometheus метрик.
type Config struct {
	// Enabled — включены ли метрики (по умолчанию false).
	Enabled bool

	// PushgatewayURL — URL Prometheus Pushgateway, например "http://pushgateway:9091".
	PushgatewayURL string

	// JobName — имя job для группировки метрик.
	JobName string

	// Timeout — таймаут HTTP запросов к Pushgateway.
	Timeout time.Duration

	// InstanceLabel — переопределение instance label. Пусто — hostname.
	InstanceLabel string
}

// Validate проверяет конфигурацию. Отключённые метрики всегда валидны.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.PushgatewayURL == "" {
		return ErrPushgatewayURLRequired
	}

	u, err := url.Parse(c.PushgatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrPushgatewayURLInvalid
	}

	if c.JobName == "" {
		return ErrJobNameRequired
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию (метрики выключены).
func DefaultConfig() Config {
	return Config{
		Enabled: false,
		JobName: "rankmgr",
		Timeout: 10 * time.Second,
	}
}
