// Package timeutil provides day-granular calendar arithmetic for the roster.
// All scheduling is done on civil dates: times are normalized to midnight in
// the configured timezone before any comparison.
package timeutil

import (
	"fmt"
	"time"
)

// DayFormat is the canonical ISO date layout used throughout the application.
const DayFormat = "2006-01-02"

// Normalize truncates a time to midnight of its civil day, keeping the location.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses an ISO date string into midnight of that day in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return t, nil
}

// DayKey formats a time as its ISO date string.
func DayKey(t time.Time) string {
	return t.Format(DayFormat)
}

// AddDays returns the civil date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Normalize(t.AddDate(0, 0, n))
}

// SameDay reports whether two times fall on the same civil day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DaysBetween returns the number of civil days from a to b (positive when b is
// after a). The difference is computed on UTC civil dates so DST transitions
// in the schedule timezone cannot skew the count.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// IterDays returns every civil day from start to end inclusive, in order.
// The result is empty when end precedes start.
func IterDays(start, end time.Time) []time.Time {
	var days []time.Time
	for current := Normalize(start); !current.After(Normalize(end)); current = AddDays(current, 1) {
		days = append(days, current)
	}
	return days
}

// WeekBucket returns the Monday-keyed week containing t. The returned span is
// Monday through Saturday; Sunday belongs to the week of the preceding Monday.
func WeekBucket(t time.Time) (weekStart, weekEnd time.Time) {
	t = Normalize(t)
	offset := (int(t.Weekday()) - int(time.Monday) + 7) % 7
	weekStart = AddDays(t, -offset)
	weekEnd = AddDays(weekStart, 5)
	return weekStart, weekEnd
}
