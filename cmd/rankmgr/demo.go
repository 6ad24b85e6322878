package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Kargones/rankmgr/internal/config"
	"github.com/Kargones/rankmgr/internal/coordinator"
	"github.com/Kargones/rankmgr/internal/di"
	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/group/local"
	"github.com/Kargones/rankmgr/internal/pkg/logging"
	"github.com/Kargones/rankmgr/internal/severity"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// demoOptions — параметры демонстрационной нагрузки.
type demoOptions struct {
	steps     int
	abortRank int
	leak      bool
}

func newDemoCmd(c *cli) *cobra.Command {
	var (
		opts      demoOptions
		localSize int
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a demo workload through the coordinator",
		Long: `Выполняет демонстрационную нагрузку: сообщения разных уровней и вложенные
таймеры. Запускается как ранг под launch или с --local N как группа горутин
в одном процессе. Политика вывода берётся из RM_MAX_SEVERITY и RM_VISIBILITY.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if localSize > 0 {
				return c.demoLocal(cfg, localSize, opts)
			}
			return c.demoRank(cfg, opts)
		},
	}

	cmd.Flags().IntVar(&opts.steps, "steps", 3, "число шагов нагрузки")
	cmd.Flags().IntVar(&opts.abortRank, "abort-rank", -1, "ранг, который выполнит abort группы на середине нагрузки")
	cmd.Flags().BoolVar(&opts.leak, "leak", false, "оставить внешний таймер незакрытым до завершения")
	cmd.Flags().IntVar(&localSize, "local", 0, "запустить группу из N горутин в текущем процессе")
	return cmd
}

// demoRank выполняет нагрузку как ранг группы из конфигурации.
func (c *cli) demoRank(cfg *config.Config, opts demoOptions) error {
	app, err := di.InitializeApp(cfg)
	if err != nil {
		return err
	}
	runDemo(app.Coordinator, opts)
	return app.Close(context.Background())
}

// demoLocal выполняет нагрузку на группе горутин.
func (c *cli) demoLocal(cfg *config.Config, size int, opts demoOptions) error {
	maxSeverity, visibility, err := cfg.Coordinator.Policy()
	if err != nil {
		return err
	}
	logger := logging.NewLoggerWithWriter(cfg.Logging.ToLogging(0), c.stderr)
	// abort может писать одновременно с чужим рангом
	out := &lockedWriter{w: c.stdout}
	renderer := di.ColorRenderer(cfg.Coordinator.Color, c.stdout)
	if renderer == nil {
		// профиль по исходному writer-у, а не по обёртке
		renderer = lipgloss.NewRenderer(c.stdout)
	}

	status := local.Run(size, func(rt group.Runtime) {
		co := coordinator.New(rt, maxSeverity, visibility,
			coordinator.WithOutput(out),
			coordinator.WithRenderer(renderer),
			coordinator.WithLogger(logger),
		)
		runDemo(co, opts)
		if err := co.Close(); err != nil {
			logger.Error("ошибка завершения ранга", "rank", rt.Rank(), "error", err.Error())
		}
	})
	if status != 0 {
		return &exitError{code: status}
	}
	return nil
}

// runDemo — нагрузка одного ранга.
func runDemo(c *coordinator.Coordinator, opts demoOptions) {
	c.Logf(severity.Notice, "rank %d of %d started", c.Rank(), c.Size())
	c.TimerStart(severity.Info, "demo")

	for step := range opts.steps {
		c.TimerStart(severity.Info, fmt.Sprintf("step-%d", step))
		c.Logf(severity.Info, "step %d", step)
		if c.Rank() == opts.abortRank && step == opts.steps/2 {
			c.Abort(fmt.Sprintf("rank %d aborts the group at step %d", c.Rank(), step))
		}
		c.TimerStop()
	}

	c.Log(severity.Warning, "demo workload finished")
	if !opts.leak {
		c.TimerStop()
	}
}

// lockedWriter сериализует Write горутин-рангов.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
