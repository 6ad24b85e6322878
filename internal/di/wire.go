//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/rankmgr/internal/config"
)

//go:generate wire

// ProviderSet объединяет все провайдеры процесса ранга.
//
// При добавлении новых провайдеров:
// 1. Создать функцию провайдера в providers.go
// 2. Добавить её в ProviderSet
// 3. Перегенерировать: go generate ./internal/di/...
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideTraceID,
	ProvideContext,
	ProvideRuntime,
	ProvideMetricsCollector,
	ProvideTracerProvider,
	ProvideCoordinator,
	wire.Struct(new(App), "*"),
)

// InitializeApp создаёт App ранга по загруженной конфигурации.
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	app, err := di.InitializeApp(cfg)
//	if err != nil {
//	    return err
//	}
//	defer app.Close(ctx)
//	app.Coordinator.Log(severity.Info, "started")
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
