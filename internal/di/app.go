package di

import (
	"context"
	"errors"

	"github.com/Kargones/rankmgr/internal/config"
	"github.com/Kargones/rankmgr/internal/coordinator"
	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/pkg/logging"
	"github.com/Kargones/rankmgr/internal/pkg/metrics"
)

// App содержит инициализированные зависимости процесса ранга.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config содержит конфигурацию процесса.
	// Передаётся извне через InitializeApp().
	Config *config.Config

	// Logger — диагностический лог ранга (stderr или файл ранга).
	Logger logging.Logger

	// TraceID — общий trace ID группы.
	// Берётся из RM_TRACE_ID, без launcher-а генерируется.
	TraceID string

	// Context несёт TraceID, span-ы таймеров становятся частью общего trace.
	Context context.Context

	// Runtime — членство в группе: Singleton для Size=1, иначе TCP клиент hub.
	Runtime group.Runtime

	// MetricsCollector собирает метрики ранга и отправляет их в Pushgateway при Close.
	// Если метрики отключены — используется NopCollector.
	MetricsCollector metrics.Collector

	// TracerShutdown завершает OTel TracerProvider и отправляет буферизированные span-ы.
	// Если трейсинг отключён — nop function.
	TracerShutdown func(context.Context) error

	// Coordinator — координатор вывода и таймеров ранга.
	Coordinator *coordinator.Coordinator
}

// Close закрывает координатор (с финализацией группы) и досылает span-ы.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Coordinator.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.TracerShutdown(ctx); err != nil {
		a.Logger.Warn("ошибка завершения TracerProvider", "error", err.Error())
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
