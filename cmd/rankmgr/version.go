package main

import (
	"fmt"

	"github.com/Kargones/rankmgr/internal/constants"

	"github.com/spf13/cobra"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(c.stdout, "%s %s (%s)\n", constants.AppName, constants.Version, constants.PreCommitHash)
			return err
		},
	}
}
