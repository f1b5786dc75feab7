package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "liftctl",
		Short:         "Operator tooling for liftplan",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPlansCmd(),
		newWeekCmd(),
		newExportCmd(logger),
	)
	return root
}
