package scheduler

import (
	"time"

	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// RestState tracks, per member, the rest days produced by Mid/Night shifts and
// the most recent Mid/Night date for the cooldown check. It is local to one
// generation and is handed from the ATM phase to the SysAid phase.
type RestState struct {
	restDays     map[string]map[string]bool
	lastMidnight map[string]time.Time
}

// NewRestState creates an empty rest/cooldown state.
func NewRestState() *RestState {
	return &RestState{
		restDays:     make(map[string]map[string]bool),
		lastMidnight: make(map[string]time.Time),
	}
}

// MarkRest flags day as a rest day for the member.
func (s *RestState) MarkRest(memberID string, day time.Time) {
	if s.restDays[memberID] == nil {
		s.restDays[memberID] = make(map[string]bool)
	}
	s.restDays[memberID][timeutil.DayKey(day)] = true
}

// IsResting reports whether day is a rest day for the member.
func (s *RestState) IsResting(memberID string, day time.Time) bool {
	return s.restDays[memberID][timeutil.DayKey(day)]
}

// RestsInRange reports whether any rest day of the member falls inside the
// inclusive range.
func (s *RestState) RestsInRange(memberID string, start, end time.Time) bool {
	for _, day := range timeutil.IterDays(start, end) {
		if s.IsResting(memberID, day) {
			return true
		}
	}
	return false
}

// RecordMidnight notes a Mid/Night assignment on day for the cooldown check.
// Only the most recent date matters.
func (s *RestState) RecordMidnight(memberID string, day time.Time) {
	day = timeutil.Normalize(day)
	if last, ok := s.lastMidnight[memberID]; !ok || day.After(last) {
		s.lastMidnight[memberID] = day
	}
}

// LastMidnight returns the member's most recent Mid/Night date, if any.
func (s *RestState) LastMidnight(memberID string) (time.Time, bool) {
	last, ok := s.lastMidnight[memberID]
	return last, ok
}

// InCooldown reports whether assigning a Mid/Night shift on day would violate
// the cooldown: the member's last Mid/Night is within cooldownDays of day.
func (s *RestState) InCooldown(memberID string, day time.Time, cooldownDays int) bool {
	last, ok := s.lastMidnight[memberID]
	if !ok {
		return false
	}
	gap := timeutil.DaysBetween(last, day)
	return gap >= 0 && gap <= cooldownDays
}
