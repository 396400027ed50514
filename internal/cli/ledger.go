package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/fairness"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

func newLedgerCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and rebuild the fairness ledger",
	}
	cmd.AddCommand(newLedgerShowCommand(app), newLedgerRecomputeCommand(app))
	return cmd
}

func newLedgerShowCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the persisted fairness counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := app().Store.FairnessCounts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range counts {
				fmt.Fprintf(out, "%s\t%s\t%d\t%s..%s\n",
					c.MemberID, c.Kind, c.Count,
					timeutil.DayKey(c.WindowStart), timeutil.DayKey(c.WindowEnd))
			}
			return nil
		},
	}
}

func newLedgerRecomputeCommand(app func() *App) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild fairness counts from assignment history",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			loc := a.Config.Scheduling.Location()

			end := timeutil.Normalize(time.Now().In(loc))
			if asOf != "" {
				var err error
				end, err = timeutil.ParseDate(asOf, loc)
				if err != nil {
					return fmt.Errorf("invalid --as-of: %w", err)
				}
			}
			windowDays := a.Config.Scheduling.FairnessWindowDays
			start := timeutil.AddDays(end, -windowDays)

			assignments, err := a.Store.AssignmentsBetween(cmd.Context(), start, end)
			if err != nil {
				return err
			}

			ledger := fairness.NewLedger(windowDays)
			ledger.RecomputeFromHistory(assignments, end)
			counts := ledger.Snapshot()
			if err := a.Store.SaveFairnessCounts(cmd.Context(), counts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ledger rebuilt as of %s: %d rows over %d days\n",
				timeutil.DayKey(end), len(counts), windowDays)
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "window end date (YYYY-MM-DD, default today)")
	return cmd
}
