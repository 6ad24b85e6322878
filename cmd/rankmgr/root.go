package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Kargones/rankmgr/internal/config"
	"github.com/Kargones/rankmgr/internal/constants"
	"github.com/Kargones/rankmgr/internal/pkg/apperrors"

	"github.com/spf13/cobra"
)

// exitError переносит код завершения команды до main.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("код завершения %d", e.code)
}

// cli — общее состояние команд.
type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
}

// loadConfig читает конфигурацию с учётом флага --config.
func (c *cli) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   constants.AppName,
		Short: "Rank-aware logging and timing for process groups",
		Long: `rankmgr запускает группу из N процессов и даёт каждому координатор
вывода: фильтрация по уровню и рангу, упорядоченный по рангам вывод,
вложенные таймеры и abort всей группы.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"YAML файл конфигурации (по умолчанию $"+config.EnvConfigFile+")")

	root.AddCommand(
		newLaunchCmd(c),
		newDemoCmd(c),
		newVersionCmd(c),
	)
	return root
}

// run выполняет команду и возвращает код завершения.
// os.Exit вызывается только в main, после отработки всех defer.
func run(args []string) int {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return constants.ExitOK
	}

	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintf(stderr, "%s: %v\n", constants.AppName, err)
	switch apperrors.CodeOf(err) {
	case apperrors.ErrConfigLoad, apperrors.ErrConfigParse, apperrors.ErrConfigValidate:
		return constants.ExitConfig
	case "":
		return constants.ExitUsage
	default:
		return constants.ExitAbort
	}
}
