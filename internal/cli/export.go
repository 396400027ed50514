package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdesk/duty-roster/internal/export"
)

func newExportCommand(app func() *App) *cobra.Command {
	var (
		scheduleID string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a schedule as CSV, iCalendar or audit text",
	}
	cmd.PersistentFlags().StringVar(&scheduleID, "schedule", "", "schedule ID to export")
	cmd.PersistentFlags().StringVar(&outPath, "out", "", "output file (default stdout)")
	_ = cmd.MarkPersistentFlagRequired("schedule")

	withOutput := func(cmd *cobra.Command, fn func(w io.Writer) error) error {
		if outPath == "" {
			return fn(cmd.OutOrStdout())
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := fn(f); err != nil {
			return err
		}
		return f.Close()
	}

	csvCmd := &cobra.Command{
		Use:   "csv",
		Short: "Export assignments as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			assignments, err := a.Store.AssignmentsForSchedule(cmd.Context(), scheduleID)
			if err != nil {
				return err
			}
			members, err := a.Store.Members(cmd.Context())
			if err != nil {
				return err
			}
			return withOutput(cmd, func(w io.Writer) error {
				return export.WriteCSV(w, assignments, members)
			})
		},
	}

	icsCmd := &cobra.Command{
		Use:   "ics",
		Short: "Export assignments as an iCalendar feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			assignments, err := a.Store.AssignmentsForSchedule(cmd.Context(), scheduleID)
			if err != nil {
				return err
			}
			members, err := a.Store.Members(cmd.Context())
			if err != nil {
				return err
			}
			return withOutput(cmd, func(w io.Writer) error {
				return export.WriteICS(w, assignments, members, a.Config.Scheduling.Location())
			})
		},
	}

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Export the decision log as readable text",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			entries, err := a.Store.AuditEntries(cmd.Context(), scheduleID)
			if err != nil {
				return err
			}
			return withOutput(cmd, func(w io.Writer) error {
				return export.WriteAuditText(w, entries)
			})
		},
	}

	cmd.AddCommand(csvCmd, icsCmd, auditCmd)
	return cmd
}
