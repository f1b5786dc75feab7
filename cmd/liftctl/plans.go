package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/myrjola/liftplan/internal/catalog"
	"github.com/spf13/cobra"
)

func newPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the training plans in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tWORKOUTS\tPER WEEK")
			for _, p := range cat.Plans() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", p.ID, p.Title, len(p.Workouts), p.TotalWorkoutsPerWeek)
			}
			if err = w.Flush(); err != nil {
				return fmt.Errorf("flush output: %w", err)
			}
			return nil
		},
	}
}
