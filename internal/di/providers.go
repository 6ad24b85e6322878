package di

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/Kargones/rankmgr/internal/config"
	"github.com/Kargones/rankmgr/internal/constants"
	"github.com/Kargones/rankmgr/internal/coordinator"
	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/group/tcp"
	"github.com/Kargones/rankmgr/internal/pkg/apperrors"
	"github.com/Kargones/rankmgr/internal/pkg/logging"
	"github.com/Kargones/rankmgr/internal/pkg/metrics"
	"github.com/Kargones/rankmgr/internal/pkg/tracing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ProvideLogger создаёт Logger ранга на основе Config.Logging.
// Путь файла лога получает номер ранга вместо {rank}.
// Атрибуты ранга добавляют сами компоненты группы и координатор.
func ProvideLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(cfg.Logging.ToLogging(cfg.Group.Rank))
}

// ProvideTraceID возвращает trace ID группы из конфигурации
// или генерирует новый, если процесс запущен без launcher-а.
func ProvideTraceID(cfg *config.Config) string {
	if cfg.Group.TraceID != "" {
		return cfg.Group.TraceID
	}
	return tracing.GenerateTraceID()
}

// ProvideContext связывает trace ID с context: span-ы всех рангов
// попадают в один trace.
func ProvideContext(traceID string) context.Context {
	ctx := tracing.WithTraceID(context.Background(), traceID)
	return tracing.ContextWithOTelTraceID(ctx, traceID)
}

// ProvideRuntime инициализирует членство в группе.
// Size=1 — Singleton, иначе подключение к hub по Group.Addr.
func ProvideRuntime(ctx context.Context, cfg *config.Config, logger logging.Logger) (group.Runtime, error) {
	if cfg.Group.Size <= 1 {
		return group.NewSingleton(nil), nil
	}

	client, err := tcp.Join(ctx, tcp.Config{
		Rank:        cfg.Group.Rank,
		Size:        cfg.Group.Size,
		Addr:        cfg.Group.Addr,
		DialTimeout: cfg.Group.DialTimeout,
	}, logger, nil)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrGroupInit, "не удалось подключиться к группе", err)
	}
	return client, nil
}

// ProvideMetricsCollector создаёт Collector ранга на основе Config.Metrics.
// При ошибке создания возвращает NopCollector и логирует ошибку.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	collector, err := metrics.NewCollector(cfg.Metrics.ToMetrics(), cfg.Group.Rank, logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracerProvider создаёт и регистрирует OTel TracerProvider.
// Возвращает shutdown function. При ошибке — nop shutdown и запись в лог.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	shutdown, err := tracing.NewTracerProvider(cfg.Tracing.ToTracing(constants.Version), cfg.Group.Rank, logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}

// ProvideCoordinator создаёт координатор ранга с политикой из Config.Coordinator.
// Config уже проверен config.Load, ошибка разбора политики здесь невозможна.
func ProvideCoordinator(
	ctx context.Context,
	cfg *config.Config,
	rt group.Runtime,
	logger logging.Logger,
	collector metrics.Collector,
) *coordinator.Coordinator {
	maxSeverity, visibility, _ := cfg.Coordinator.Policy()

	opts := []coordinator.Option{
		coordinator.WithLogger(logger),
		coordinator.WithMetrics(collector),
		coordinator.WithContext(ctx),
	}
	if r := ColorRenderer(cfg.Coordinator.Color, os.Stdout); r != nil {
		opts = append(opts, coordinator.WithRenderer(r))
	}
	return coordinator.New(rt, maxSeverity, visibility, opts...)
}

// ColorRenderer возвращает renderer для w с явным режимом цвета.
// Для auto — nil: профиль определяется по самому writer-у.
func ColorRenderer(mode string, w io.Writer) *lipgloss.Renderer {
	var profile termenv.Profile
	switch mode {
	case config.ColorAlways:
		profile = termenv.TrueColor
	case config.ColorNever:
		profile = termenv.Ascii
	default:
		return nil
	}
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	return r
}
