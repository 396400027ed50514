// Package availability exposes a read-only view answering "is this member
// available on this date" from their recorded unavailable periods. ATM rest
// days are not part of this view; the scheduler tracks those itself.
package availability

import (
	"time"

	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// View is a pure query view over a snapshot of unavailable periods.
type View struct {
	periods map[string][]roster.UnavailablePeriod
}

// NewView builds a view from a snapshot of unavailable periods.
func NewView(periods []roster.UnavailablePeriod) *View {
	byMember := make(map[string][]roster.UnavailablePeriod)
	for _, p := range periods {
		byMember[p.MemberID] = append(byMember[p.MemberID], p)
	}
	return &View{periods: byMember}
}

// IsAvailable reports whether the member has no unavailable period covering
// the given date.
func (v *View) IsAvailable(memberID string, date time.Time) bool {
	for _, p := range v.periods[memberID] {
		if p.Contains(date) {
			return false
		}
	}
	return true
}

// IsAvailableAll reports whether the member is available on every day of the
// inclusive range.
func (v *View) IsAvailableAll(memberID string, start, end time.Time) bool {
	for _, day := range timeutil.IterDays(start, end) {
		if !v.IsAvailable(memberID, day) {
			return false
		}
	}
	return true
}
