package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/scheduler"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

func newGenerateCommand(app func() *App) *cobra.Command {
	var (
		startFlag      string
		endFlag        string
		seedFlag       int64
		aggressiveness int
		team           string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a draft schedule for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			loc := a.Config.Scheduling.Location()

			start, err := timeutil.ParseDate(startFlag, loc)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			end, err := timeutil.ParseDate(endFlag, loc)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			req := scheduler.Request{
				Start:          start,
				End:            end,
				Aggressiveness: aggressiveness,
				TeamKey:        team,
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seedFlag
			}

			result, err := a.Assembler.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Schedule %s (%s) generated: %d assignments, seed %d\n",
				result.Schedule.ID, result.Schedule.Status, len(result.Assignments), result.Schedule.Seed)
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endFlag, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&seedFlag, "seed", 0, "tie-break seed; omit for a random one")
	cmd.Flags().IntVar(&aggressiveness, "aggressiveness", 0, "fairness aggressiveness 1-5 (default from config)")
	cmd.Flags().StringVar(&team, "team", "", "team key for the generation lock")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}
