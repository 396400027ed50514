// Package export renders a schedule for the outside world: CSV for
// spreadsheets, iCalendar for calendar clients and plain text for audit
// reviews.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

var csvHeader = []string{"date", "weekday", "kind", "shift_label", "member_id", "member_name"}

// WriteCSV renders assignments as CSV in render order. Member names come from
// the members slice; unknown IDs fall back to the ID itself.
func WriteCSV(w io.Writer, assignments []roster.Assignment, members []roster.Member) error {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	sorted := make([]roster.Assignment, len(assignments))
	copy(sorted, assignments)
	roster.SortAssignments(sorted)

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, a := range sorted {
		name, ok := names[a.MemberID]
		if !ok {
			name = a.MemberID
		}
		record := []string{
			timeutil.DayKey(a.Date),
			a.Date.Weekday().String(),
			string(a.Kind),
			a.ShiftLabel,
			a.MemberID,
			name,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
