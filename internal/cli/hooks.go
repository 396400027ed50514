package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/opsdesk/duty-roster/internal/export"
	"github.com/opsdesk/duty-roster/internal/logging"
	appsignals "github.com/opsdesk/duty-roster/internal/signals"
)

var hooksOnce sync.Once

// registerHooks wires the in-process signal handlers the CLI consumes:
// generation results are logged and, when export.auto_csv_path is set, the
// fresh schedule is written out as CSV without a separate export invocation.
func registerHooks(app func() *App) {
	hooksOnce.Do(func() {
		appsignals.OnScheduleGenerated(func(ctx context.Context, data appsignals.ScheduleGeneratedData) {
			logger := logging.GetLogger("signal-schedule-generated")
			logger.Info().
				Str("schedule_id", data.ScheduleID).
				Int("assignments", data.Assignments).
				Int("warnings", data.Warnings).
				Msg("Schedule generation detected")

			a := app()
			if a == nil || a.Config.Export.AutoCSVPath == "" {
				return
			}
			if err := writeScheduleCSV(ctx, a, data.ScheduleID, a.Config.Export.AutoCSVPath); err != nil {
				logger.Error().Err(err).
					Str("path", a.Config.Export.AutoCSVPath).
					Msg("Failed to auto-export schedule")
				return
			}
			logger.Info().Str("path", a.Config.Export.AutoCSVPath).Msg("Schedule auto-exported")
		}, "cli-schedule-generated-handler")

		appsignals.OnSwapApplied(func(ctx context.Context, data appsignals.SwapAppliedData) {
			logger := logging.GetLogger("signal-swap-applied")
			logger.Info().
				Int64("assignment_id", data.AssignmentID).
				Str("from", data.FromMemberID).
				Str("to", data.ToMemberID).
				Msg("Swap application detected")
		}, "cli-swap-applied-handler")
	})
}

// writeScheduleCSV exports one schedule's active assignments to path.
func writeScheduleCSV(ctx context.Context, a *App, scheduleID, path string) error {
	assignments, err := a.Store.AssignmentsForSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	members, err := a.Store.Members(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, assignments, members); err != nil {
		return err
	}
	return f.Close()
}
