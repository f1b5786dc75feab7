package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/myrjola/liftplan/internal/catalog"
	"github.com/myrjola/liftplan/internal/workout"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type weekOptions struct {
	planID      string
	date        string
	programWeek int
	verbose     bool
}

func (o *weekOptions) register(fs *pflag.FlagSet) {
	fs.StringVarP(&o.planID, "plan", "p", "ppl6", "plan id")
	fs.StringVarP(&o.date, "date", "d", "", "any date within the week, YYYY-MM-DD (default today)")
	fs.IntVarP(&o.programWeek, "program-week", "w", 1, "program week used to resolve weekly progressions")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "list the exercises of each workout")
}

func newWeekCmd() *cobra.Command {
	var opts weekOptions
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the template schedule of a plan for one week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWeek(cmd, opts)
		},
	}
	opts.register(cmd.Flags())
	return cmd
}

func runWeek(cmd *cobra.Command, opts weekOptions) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	plan, ok := cat.Plan(opts.planID)
	if !ok {
		return fmt.Errorf("unknown plan %q", opts.planID)
	}
	if opts.programWeek < 1 {
		return fmt.Errorf("program week must be positive, got %d", opts.programWeek)
	}
	date := workout.Date(time.Now())
	if opts.date != "" {
		if date, err = workout.ParseDateKey(opts.date); err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
	for _, day := range workout.ResolveWeek(cat, plan, date, nil) {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			workout.DateKey(day.Date), day.Date.Weekday(), day.Workout.ID, day.Workout.Title)
		if !opts.verbose {
			continue
		}
		for _, e := range catalog.ApplyWeeklyProgression(day.Workout, opts.programWeek).Exercises {
			_, _ = fmt.Fprintf(w, "\t\t%s\t%s x %s\n", e.Name, e.Sets, e.Reps)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
