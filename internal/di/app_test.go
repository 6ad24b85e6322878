package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/pkg/testutil"
	"github.com/Kargones/rankmgr/internal/severity"
)

// TestInitializeApp_FullPipeline: одиночный процесс без launcher-а
// получает Singleton, координатор пишет в stdout, Close финализирует группу.
func TestInitializeApp_FullPipeline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Coordinator.Color = "never"

	var app *App
	out := testutil.CaptureStdout(t, func() {
		var err error
		app, err = InitializeApp(cfg)
		require.NoError(t, err)

		app.Coordinator.Log(severity.Info, "ready")
		app.Coordinator.Log(severity.Debug, "скрыто лимитом info")
		app.Coordinator.TimerStart(severity.Info, "work")
		app.Coordinator.TimerStop()
		require.NoError(t, app.Close(context.Background()))
	})

	assert.Same(t, cfg, app.Config)
	assert.Len(t, app.TraceID, 32)
	assert.IsType(t, &group.Singleton{}, app.Runtime)
	assert.NotNil(t, app.MetricsCollector)
	assert.NotNil(t, app.Logger)

	assert.Contains(t, out, "Rank 0: [INFO]: ready\n")
	assert.NotContains(t, out, "скрыто")
	assert.Contains(t, out, "Rank 0: [INFO]: Timer 'work' started at ")
	assert.Contains(t, out, "Rank 0: [INFO]: Timer 'work' stopped at ")
}

func TestApp_CloseTwice(t *testing.T) {
	cfg := testConfig(t)

	var app *App
	_ = testutil.CaptureStdout(t, func() {
		var err error
		app, err = InitializeApp(cfg)
		require.NoError(t, err)
	})

	require.NoError(t, app.Close(context.Background()))
	// повторный Close координатора ничего не делает, Finalize не повторяется
	assert.NoError(t, app.Close(context.Background()))
}
