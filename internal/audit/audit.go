// Package audit records every scheduling decision with enough detail to
// reconstruct it: the chosen member, every candidate considered with its rank
// key, the verbal tie-break reason, and any warnings.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdesk/duty-roster/internal/fairness"
	"github.com/opsdesk/duty-roster/internal/logging"
	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// Action tags how the entry was produced.
type Action string

const (
	ActionSelect   Action = "select"
	ActionSwap     Action = "swap"
	ActionReassign Action = "reassign"
)

// Entry is one recorded decision.
type Entry struct {
	ScheduleID string
	Action     Action
	Date       time.Time
	WeekStart  *time.Time // set for weekly kinds
	Kind       roster.TaskKind
	ShiftLabel string
	MemberID   string // empty when the slot was skipped
	Candidates []fairness.RankedCandidate
	Reason     fairness.DecisionReason
	Warnings   []string
	CreatedAt  time.Time
}

// Log is an append-only decision log scoped to one generation.
type Log struct {
	entries []Entry
	created time.Time
	logger  zerolog.Logger
}

// NewLog creates an empty audit log.
func NewLog() *Log {
	return &Log{created: time.Now(), logger: logging.GetLogger("audit")}
}

// Record appends a selection entry. Every entry of one log carries the log's
// creation time, so two runs over identical inputs differ only by that single
// clock value.
func (l *Log) Record(entry Entry) {
	if entry.Action == "" {
		entry.Action = ActionSelect
	}
	entry.CreatedAt = l.created
	l.entries = append(l.entries, entry)
}

// Warn appends a warning-only entry for a slot that could not be filled.
func (l *Log) Warn(entry Entry, warning string) {
	entry.Warnings = append(entry.Warnings, warning)
	l.logger.Warn().
		Str("date", timeutil.DayKey(entry.Date)).
		Str("kind", string(entry.Kind)).
		Str("shift", entry.ShiftLabel).
		Str("warning", warning).
		Msg("Slot left unassigned")
	l.Record(entry)
}

// Entries returns the recorded entries in append order.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Warnings collects all warning strings across entries, in append order.
func (l *Log) Warnings() []string {
	var warnings []string
	for _, e := range l.entries {
		warnings = append(warnings, e.Warnings...)
	}
	return warnings
}

// Render formats the log as readable text for export.
func (l *Log) Render() string {
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.Describe())
		b.WriteString("\n")
	}
	return b.String()
}

// Describe formats the entry as one readable block: the chosen member with
// its reason, the ranked candidates, and any warnings.
func (e Entry) Describe() string {
	key := timeutil.DayKey(e.Date)
	if e.WeekStart != nil {
		key = "week " + timeutil.DayKey(*e.WeekStart)
	}

	var b strings.Builder
	if e.MemberID != "" {
		fmt.Fprintf(&b, "%s %s [%s]: chose %s (%s)", key, e.Kind, e.ShiftLabel, e.MemberID, e.Reason)
		for _, c := range e.Candidates {
			fmt.Fprintf(&b, "\n  candidate %s primary=%d total=%d hash=%d", c.MemberID, c.Key.Primary, c.Key.Secondary, c.Key.TieBreak)
		}
	} else {
		fmt.Fprintf(&b, "%s %s [%s]: unassigned", key, e.Kind, e.ShiftLabel)
	}
	for _, w := range e.Warnings {
		fmt.Fprintf(&b, "\n  WARNING: %s", w)
	}
	return b.String()
}
