package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

func newScheduleCommand(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and transition schedules",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			schedules, err := app().Store.Schedules(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range schedules {
				fmt.Fprintf(out, "%s\t%s\t%s..%s\tseed=%d\n",
					s.ID, s.Status, timeutil.DayKey(s.StartDate), timeutil.DayKey(s.EndDate), s.Seed)
			}
			return nil
		},
	}

	transition := func(use, short string, next roster.ScheduleStatus) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <schedule-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app().Store.TransitionSchedule(cmd.Context(), args[0], next); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schedule %s is now %s\n", args[0], next)
				return nil
			},
		}
	}

	cmd.AddCommand(
		list,
		transition("publish", "Publish a draft schedule", roster.SchedulePublished),
		transition("archive", "Archive a published schedule", roster.ScheduleArchived),
	)
	return cmd
}
