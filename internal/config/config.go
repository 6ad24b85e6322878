// Package config загружает конфигурацию rankmgr из переменных окружения RM_*
// и необязательного YAML файла. Переменные окружения переопределяют файл.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Kargones/rankmgr/internal/pkg/apperrors"
	"github.com/Kargones/rankmgr/internal/severity"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfigFile — переменная окружения с путём к YAML файлу конфигурации.
const EnvConfigFile = "RM_CONFIG"

// Режимы цвета строк координатора.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config — полная конфигурация процесса rankmgr.
type Config struct {
	// Coordinator — политика фильтрации и оформление строк.
	Coordinator CoordinatorConfig `yaml:"coordinator"`

	// Group — членство в группе процессов.
	Group GroupConfig `yaml:"group"`

	// Logging — диагностический лог.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics — Prometheus метрики.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing — OpenTelemetry трейсинг таймеров.
	Tracing TracingConfig `yaml:"tracing"`
}

// CoordinatorConfig — политика фильтрации координатора.
// Значения фиксируются при создании координатора.
type CoordinatorConfig struct {
	// MaxSeverity — наименее срочный выводимый уровень.
	MaxSeverity string `yaml:"maxSeverity" env:"RM_MAX_SEVERITY" env-default:"info"`

	// Visibility — "zero" (только ранг 0) или "all" (все ранги по порядку).
	Visibility string `yaml:"visibility" env:"RM_VISIBILITY" env-default:"zero"`

	// Color — "auto", "always" или "never".
	Color string `yaml:"color" env:"RM_COLOR" env-default:"auto"`
}

// GroupConfig — параметры группы. Заполняется launcher-ом для каждого ранга.
type GroupConfig struct {
	// Rank — ранг процесса.
	Rank int `yaml:"rank" env:"RM_RANK" env-default:"0"`

	// Size — размер группы. 1 означает запуск без launcher.
	Size int `yaml:"size" env:"RM_SIZE" env-default:"1"`

	// Addr — адрес hub. Обязателен при Size > 1.
	Addr string `yaml:"addr" env:"RM_ADDR"`

	// TraceID — общий trace ID группы, выставляется launcher-ом.
	TraceID string `yaml:"traceId" env:"RM_TRACE_ID"`

	// DialTimeout — таймаут подключения к hub.
	DialTimeout time.Duration `yaml:"dialTimeout" env:"RM_DIAL_TIMEOUT" env-default:"10s"`
}

// Load читает конфигурацию. path — YAML файл; пустой path берётся из RM_CONFIG,
// если и он пуст, используются только переменные окружения.
// Возвращённая конфигурация проверена Validate.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	var cfg Config
	fromFile := false
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigLoad, "не удалось прочитать файл конфигурации "+path, err)
		}
		empty, err := validateDocument(data)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigParse, "файл конфигурации не соответствует схеме", err)
		}
		fromFile = !empty
	}

	if fromFile {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrConfigParse, "не удалось разобрать конфигурацию", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrConfigParse, "не удалось прочитать переменные окружения", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	fail := func(msg string, err error) error {
		return apperrors.NewAppError(apperrors.ErrConfigValidate, msg, err)
	}

	if _, _, err := c.Coordinator.Policy(); err != nil {
		return fail("некорректная политика координатора", err)
	}
	switch c.Coordinator.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fail("некорректный режим цвета: "+c.Coordinator.Color, nil)
	}

	if err := c.Group.validate(); err != nil {
		return fail("некорректные параметры группы", err)
	}
	if err := c.Logging.validate(); err != nil {
		return fail("некорректная конфигурация логирования", err)
	}

	metricsCfg := c.Metrics.ToMetrics()
	if err := metricsCfg.Validate(); err != nil {
		return fail("некорректная конфигурация метрик", err)
	}
	tracingCfg := c.Tracing.ToTracing("")
	if err := tracingCfg.Validate(); err != nil {
		return fail("некорректная конфигурация трейсинга", err)
	}
	return nil
}

// Policy разбирает уровень и видимость.
func (c CoordinatorConfig) Policy() (severity.Severity, severity.Visibility, error) {
	s, err := severity.Parse(c.MaxSeverity)
	if err != nil {
		return 0, 0, err
	}
	v, err := severity.ParseVisibility(c.Visibility)
	if err != nil {
		return 0, 0, err
	}
	return s, v, nil
}

func (g GroupConfig) validate() error {
	switch {
	case g.Size < 1:
		return fmt.Errorf("размер группы должен быть положительным, получено %d", g.Size)
	case g.Rank < 0 || g.Rank >= g.Size:
		return fmt.Errorf("ранг %d вне диапазона 0..%d", g.Rank, g.Size-1)
	case g.Size > 1 && g.Addr == "":
		return fmt.Errorf("для группы из %d процессов нужен адрес hub (RM_ADDR)", g.Size)
	case g.DialTimeout <= 0:
		return fmt.Errorf("таймаут подключения должен быть положительным")
	}
	return nil
}
