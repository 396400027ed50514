package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

const icsProductID = "-//OpsDesk//Duty Roster//EN"

// WriteICS renders assignments as an iCalendar feed, one event per assignment
// row. Event times use the shift windows of the canonical plan in the given
// location.
func WriteICS(w io.Writer, assignments []roster.Assignment, members []roster.Member, loc *time.Location) error {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	sorted := make([]roster.Assignment, len(assignments))
	copy(sorted, assignments)
	roster.SortAssignments(sorted)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)

	for _, a := range sorted {
		event, err := assignmentEvent(a, names, loc)
		if err != nil {
			return err
		}
		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func assignmentEvent(a roster.Assignment, names map[string]string, loc *time.Location) (*ical.Event, error) {
	startClock, endClock := roster.ShiftWindow(a.Kind, a.ShiftLabel)
	start, err := clockOn(a.Date, startClock, loc)
	if err != nil {
		return nil, err
	}
	end, err := clockOn(a.Date, endClock, loc)
	if err != nil {
		return nil, err
	}

	name, ok := names[a.MemberID]
	if !ok {
		name = a.MemberID
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventUID(a))
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, end)
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s %s: %s", a.Kind, a.ShiftLabel, name))
	return event, nil
}

// eventUID is stable across exports so calendar clients update in place.
func eventUID(a roster.Assignment) string {
	return fmt.Sprintf("%s-%s-%s-%s@duty-roster", a.ScheduleID, timeutil.DayKey(a.Date), a.Kind, a.ShiftLabel)
}

func clockOn(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid shift window %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}
