package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/Kargones/rankmgr/internal/launcher"
	"github.com/Kargones/rankmgr/internal/pkg/logging"

	"github.com/spf13/cobra"
)

func newLaunchCmd(c *cli) *cobra.Command {
	var (
		size      int
		hubAddr   string
		killGrace time.Duration
	)

	cmd := &cobra.Command{
		Use:   "launch -n N -- command [args...]",
		Short: "Run N copies of a command as one process group",
		Long: `Запускает команду в N процессах. Каждый процесс получает RM_RANK, RM_SIZE,
RM_ADDR и RM_TRACE_ID; все процессы пишут в общий stdout.
Код завершения — статус abort группы или первый ненулевой код ранга.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			logCfg := cfg.Logging.ToLogging(0)
			// launcher не ранг: его лог всегда в stderr
			logCfg.Output = logging.OutputStderr
			logger := logging.NewLoggerWithWriter(logCfg, c.stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := launcher.Run(ctx, launcher.Options{
				Size:      size,
				Command:   args,
				Stdout:    c.stdout,
				Stderr:    c.stderr,
				HubAddr:   hubAddr,
				TraceID:   cfg.Group.TraceID,
				KillGrace: killGrace,
			}, logger)
			if err != nil {
				return err
			}
			if res.Status != 0 {
				return &exitError{code: res.Status}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "n", 1, "число процессов в группе")
	cmd.Flags().StringVar(&hubAddr, "hub-addr", "", "адрес hub (по умолчанию loopback, свободный порт)")
	cmd.Flags().DurationVar(&killGrace, "kill-grace", launcher.DefaultKillGrace, "пауза перед принудительным завершением рангов после abort")
	return cmd
}
