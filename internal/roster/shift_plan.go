package roster

import "time"

// Shift is one slot of the daily ATM plan.
type Shift struct {
	Kind          TaskKind
	Label         string
	StartTime     string // HH:MM
	EndTime       string // HH:MM
	RequiredCount int
}

// DayShiftPlan maps each weekday to its ordered list of ATM shifts.
type DayShiftPlan map[time.Weekday][]Shift

// Shift window boundaries, from the operations handbook.
const (
	morningStart  = "06:00"
	morningEnd    = "08:30"
	midNightStart = "08:30"
	midNightEnd   = "22:00"
	nightStart    = "14:30"
)

// CanonicalDayShiftPlan returns the authoritative ATM plan: two shifts on
// weekdays, four on Saturday, three on Sunday.
func CanonicalDayShiftPlan() DayShiftPlan {
	weekday := []Shift{
		{Kind: TaskATMMorning, Label: "Morning", StartTime: morningStart, EndTime: morningEnd, RequiredCount: 1},
		{Kind: TaskATMMidnight, Label: "Mid/Night", StartTime: midNightStart, EndTime: midNightEnd, RequiredCount: 1},
	}

	plan := DayShiftPlan{
		time.Monday:    weekday,
		time.Tuesday:   weekday,
		time.Wednesday: weekday,
		time.Thursday:  weekday,
		time.Friday:    weekday,
		time.Saturday: {
			{Kind: TaskATMMorning, Label: "Morning", StartTime: morningStart, EndTime: morningEnd, RequiredCount: 1},
			{Kind: TaskATMMidnight, Label: "Mid/Night-1", StartTime: midNightStart, EndTime: midNightEnd, RequiredCount: 1},
			{Kind: TaskATMMidnight, Label: "Mid/Night-2", StartTime: midNightStart, EndTime: midNightEnd, RequiredCount: 1},
			{Kind: TaskATMMidnight, Label: "Mid/Night-3", StartTime: midNightStart, EndTime: midNightEnd, RequiredCount: 1},
		},
		time.Sunday: {
			{Kind: TaskATMMorning, Label: "Morning-1", StartTime: morningStart, EndTime: morningEnd, RequiredCount: 1},
			{Kind: TaskATMMorning, Label: "Morning-2", StartTime: morningStart, EndTime: morningEnd, RequiredCount: 1},
			{Kind: TaskATMMidnight, Label: "Night", StartTime: nightStart, EndTime: midNightEnd, RequiredCount: 1},
		},
	}
	return plan
}

// ShiftWindow returns the HH:MM window for a (kind, label) pair of the
// canonical plan, falling back to office hours for the weekly roles.
func ShiftWindow(kind TaskKind, label string) (start, end string) {
	switch kind {
	case TaskATMMorning:
		return morningStart, morningEnd
	case TaskATMMidnight:
		if label == "Night" {
			return nightStart, midNightEnd
		}
		return midNightStart, midNightEnd
	default:
		return "09:00", "17:00"
	}
}
