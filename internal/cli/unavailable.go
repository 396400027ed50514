package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

func newUnavailableCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unavailable",
		Short: "Manage unavailable periods",
	}
	cmd.AddCommand(
		newUnavailableAddCommand(app),
		newUnavailableListCommand(app),
		newUnavailableRemoveCommand(app),
	)
	return cmd
}

func newUnavailableAddCommand(app func() *App) *cobra.Command {
	var (
		memberID string
		start    string
		end      string
		reason   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an unavailable period for a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			loc := a.Config.Scheduling.Location()

			startDate, err := timeutil.ParseDate(start, loc)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			endDate, err := timeutil.ParseDate(end, loc)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			if endDate.Before(startDate) {
				return fmt.Errorf("end date %s before start date %s", end, start)
			}
			if _, err := a.Store.MemberByID(cmd.Context(), memberID); err != nil {
				return err
			}

			p, err := a.Store.AddUnavailablePeriod(cmd.Context(), roster.UnavailablePeriod{
				MemberID:  memberID,
				StartDate: startDate,
				EndDate:   endDate,
				Reason:    reason,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Period %d recorded for %s (%s to %s)\n",
				p.ID, p.MemberID, timeutil.DayKey(p.StartDate), timeutil.DayKey(p.EndDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "member ID")
	cmd.Flags().StringVar(&start, "start", "", "first unavailable day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last unavailable day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reason, "reason", "", "optional reason")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newUnavailableListCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unavailable periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			periods, err := app().Store.UnavailablePeriods(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range periods {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
					p.ID, p.MemberID, timeutil.DayKey(p.StartDate), timeutil.DayKey(p.EndDate), p.Reason)
			}
			return nil
		},
	}
}

func newUnavailableRemoveCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <period-id>",
		Short: "Remove an unavailable period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid period ID %q", args[0])
			}
			if err := app().Store.RemoveUnavailablePeriod(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Period %d removed\n", id)
			return nil
		},
	}
}
