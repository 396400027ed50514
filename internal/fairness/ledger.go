// Package fairness holds the rolling-window assignment ledger and the
// fairness-ordered selector used by both scheduling streams.
package fairness

import (
	"sort"
	"time"

	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// Ledger tracks per-member, per-kind assignment counts inside a rolling
// window. It is the single source of fairness truth during a generation:
// seeded from persisted history at the start, written back as a snapshot on
// success.
type Ledger struct {
	counts      map[string]map[roster.TaskKind]int
	windowDays  int
	windowStart time.Time
	windowEnd   time.Time
}

// NewLedger creates an empty ledger with the given rolling window.
func NewLedger(windowDays int) *Ledger {
	return &Ledger{
		counts:     make(map[string]map[roster.TaskKind]int),
		windowDays: windowDays,
	}
}

// Count returns the member's count for one kind.
func (l *Ledger) Count(memberID string, kind roster.TaskKind) int {
	return l.counts[memberID][kind]
}

// Total returns the member's count summed over all kinds.
func (l *Ledger) Total(memberID string) int {
	total := 0
	for _, c := range l.counts[memberID] {
		total += c
	}
	return total
}

// Increment adds one assignment for the member and kind.
func (l *Ledger) Increment(memberID string, kind roster.TaskKind) {
	if l.counts[memberID] == nil {
		l.counts[memberID] = make(map[roster.TaskKind]int)
	}
	l.counts[memberID][kind]++
}

// Decrement removes one assignment for the member and kind. Counts never go
// below zero.
func (l *Ledger) Decrement(memberID string, kind roster.TaskKind) {
	if l.counts[memberID] == nil || l.counts[memberID][kind] == 0 {
		return
	}
	l.counts[memberID][kind]--
}

// WindowDays returns the configured rolling window length.
func (l *Ledger) WindowDays() int {
	return l.windowDays
}

// RecomputeFromHistory rebuilds all counts from assignment history, keeping
// only active assignments whose date falls inside (asOf - windowDays, asOf].
// Daily kinds count once per row; weekly kinds count once per distinct
// (member, kind, week start).
func (l *Ledger) RecomputeFromHistory(assignments []roster.Assignment, asOf time.Time) {
	l.windowEnd = timeutil.Normalize(asOf)
	l.windowStart = timeutil.AddDays(l.windowEnd, -l.windowDays)
	l.counts = make(map[string]map[roster.TaskKind]int)

	seenWeeks := make(map[string]bool)
	for _, a := range assignments {
		if a.Status != roster.AssignmentActive {
			continue
		}
		day := timeutil.Normalize(a.Date)
		if !day.After(l.windowStart) || day.After(l.windowEnd) {
			continue
		}

		if a.Kind.Recurrence() == roster.RecurrenceWeekly {
			weekKey := timeutil.DayKey(day)
			if a.WeekStart != nil {
				weekKey = timeutil.DayKey(*a.WeekStart)
			}
			dedupe := a.MemberID + "|" + string(a.Kind) + "|" + weekKey
			if seenWeeks[dedupe] {
				continue
			}
			seenWeeks[dedupe] = true
		}
		l.Increment(a.MemberID, a.Kind)
	}
}

// Snapshot returns the ledger as persistable fairness count rows, sorted by
// (member, kind) for stable output.
func (l *Ledger) Snapshot() []roster.FairnessCount {
	var rows []roster.FairnessCount
	for memberID, kinds := range l.counts {
		for kind, count := range kinds {
			if count == 0 {
				continue
			}
			rows = append(rows, roster.FairnessCount{
				MemberID:    memberID,
				Kind:        kind,
				Count:       count,
				WindowStart: l.windowStart,
				WindowEnd:   l.windowEnd,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].MemberID != rows[j].MemberID {
			return rows[i].MemberID < rows[j].MemberID
		}
		return rows[i].Kind.CanonicalOrder() < rows[j].Kind.CanonicalOrder()
	})
	return rows
}
