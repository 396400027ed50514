package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/opsdesk/duty-roster/internal/audit"
	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// memStore is an in-memory Store used by the scheduler tests.
type memStore struct {
	mu           sync.Mutex
	members      []roster.Member
	periods      []roster.UnavailablePeriod
	assignments  []roster.Assignment
	auditEntries []audit.Entry
	counts       []roster.FairnessCount
	schedules    []roster.Schedule
	nextID       int64
	saveErr      error
}

func newMemStore(members []roster.Member, periods []roster.UnavailablePeriod) *memStore {
	return &memStore{members: members, periods: periods, nextID: 1}
}

func (s *memStore) Members(ctx context.Context) ([]roster.Member, error) {
	return s.members, nil
}

func (s *memStore) UnavailablePeriods(ctx context.Context) ([]roster.UnavailablePeriod, error) {
	return s.periods, nil
}

func (s *memStore) AssignmentsBetween(ctx context.Context, start, end time.Time) ([]roster.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []roster.Assignment
	for _, a := range s.assignments {
		if a.Status != roster.AssignmentActive {
			continue
		}
		key := timeutil.DayKey(a.Date)
		if key >= timeutil.DayKey(start) && key <= timeutil.DayKey(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memStore) SaveGeneration(ctx context.Context, schedule roster.Schedule, assignments []roster.Assignment, entries []audit.Entry, counts []roster.FairnessCount) ([]roster.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	saved := make([]roster.Assignment, len(assignments))
	copy(saved, assignments)
	for i := range saved {
		saved[i].ID = s.nextID
		s.nextID++
	}
	s.schedules = append(s.schedules, schedule)
	s.assignments = append(s.assignments, saved...)
	s.auditEntries = append(s.auditEntries, entries...)
	s.counts = counts
	return saved, nil
}

// testConfig mirrors the documented defaults.
func testConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		Timezone:                 "UTC",
		FairnessWindowDays:       90,
		ATMRestRuleEnabled:       true,
		ATMBCooldownDays:         2,
		SysAidWeekDays:           []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		SysAidRequiredOfficeDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		DefaultAggressiveness:    1,
	}
}

func weekdayOffice() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true,
	}
}

func testMembers(ids ...string) []roster.Member {
	members := make([]roster.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, roster.Member{
			ID:         id,
			Name:       id,
			OfficeDays: weekdayOffice(),
			Role:       roster.RoleMember,
			Active:     true,
		})
	}
	return members
}

func int64Ptr(v int64) *int64 { return &v }
