package swap

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/duty-roster/internal/audit"
	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// fakeStore backs applier tests with in-memory state.
type fakeStore struct {
	schedules   map[string]roster.Schedule
	members     map[string]roster.Member
	periods     []roster.UnavailablePeriod
	assignments map[int64]roster.Assignment
	entries     []audit.Entry
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schedules:   make(map[string]roster.Schedule),
		members:     make(map[string]roster.Member),
		assignments: make(map[int64]roster.Assignment),
		nextID:      100,
	}
}

func (s *fakeStore) AssignmentByID(ctx context.Context, id int64) (roster.Assignment, error) {
	a, ok := s.assignments[id]
	if !ok {
		return roster.Assignment{}, fmt.Errorf("assignment %d not found", id)
	}
	return a, nil
}

func (s *fakeStore) ScheduleByID(ctx context.Context, id string) (roster.Schedule, error) {
	sched, ok := s.schedules[id]
	if !ok {
		return roster.Schedule{}, fmt.Errorf("schedule %s not found", id)
	}
	return sched, nil
}

func (s *fakeStore) MemberByID(ctx context.Context, id string) (roster.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return roster.Member{}, fmt.Errorf("member %s not found", id)
	}
	return m, nil
}

func (s *fakeStore) UnavailablePeriods(ctx context.Context) ([]roster.UnavailablePeriod, error) {
	return s.periods, nil
}

func (s *fakeStore) AssignmentsBetween(ctx context.Context, start, end time.Time) ([]roster.Assignment, error) {
	var out []roster.Assignment
	for _, a := range s.assignments {
		key := timeutil.DayKey(a.Date)
		if key >= timeutil.DayKey(start) && key <= timeutil.DayKey(end) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) ApplySwap(ctx context.Context, target roster.Assignment, toMemberID string, entry audit.Entry) ([]roster.Assignment, error) {
	var replaced []roster.Assignment
	for id, a := range s.assignments {
		if a.Status != roster.AssignmentActive {
			continue
		}
		match := a.ID == target.ID
		if !target.Kind.IsATM() && a.ScheduleID == target.ScheduleID && a.Kind == target.Kind &&
			a.WeekStart != nil && target.WeekStart != nil && timeutil.SameDay(*a.WeekStart, *target.WeekStart) {
			match = true
		}
		if !match {
			continue
		}
		a.Status = roster.AssignmentSuperseded
		s.assignments[id] = a

		next := a
		next.ID = s.nextID
		s.nextID++
		next.MemberID = toMemberID
		next.Status = roster.AssignmentActive
		s.assignments[next.ID] = next
		replaced = append(replaced, next)
	}
	s.entries = append(s.entries, entry)
	return replaced, nil
}

func (s *fakeStore) addMember(id string) {
	m := member(id)
	s.members[id] = m
}

func (s *fakeStore) addAssignment(a roster.Assignment) roster.Assignment {
	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
	}
	if a.Status == "" {
		a.Status = roster.AssignmentActive
	}
	s.assignments[a.ID] = a
	return a
}

func approvedRequest(assignmentID int64, toMemberID string) *Request {
	req := NewRequest(assignmentID, "alice", toMemberID, "")
	_ = req.RecordPeerDecision(DecisionApproved)
	_ = req.RecordAdminDecision(DecisionApproved)
	return req
}

func TestApplySwapMovesAssignment(t *testing.T) {
	store := newFakeStore()
	store.schedules["s1"] = roster.Schedule{ID: "s1", Status: roster.SchedulePublished}
	store.addMember("alice")
	store.addMember("bob")
	target := store.addAssignment(roster.Assignment{
		ID: 1, ScheduleID: "s1", Date: date(2025, time.January, 8),
		Kind: roster.TaskATMMorning, ShiftLabel: "Morning", MemberID: "alice",
	})

	applier := NewApplier(testCfg(), store)
	req := approvedRequest(target.ID, "bob")

	replaced, err := applier.Apply(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, replaced, 1)
	assert.Equal(t, "bob", replaced[0].MemberID)
	assert.Equal(t, roster.AssignmentActive, replaced[0].Status)
	assert.Equal(t, StatusApplied, req.Status)

	// The original row is superseded, not deleted
	old := store.assignments[target.ID]
	assert.Equal(t, roster.AssignmentSuperseded, old.Status)

	require.Len(t, store.entries, 1)
	assert.Equal(t, audit.ActionSwap, store.entries[0].Action)
	assert.Equal(t, "bob", store.entries[0].MemberID)
}

func TestApplySwapRequiresApproval(t *testing.T) {
	store := newFakeStore()
	applier := NewApplier(testCfg(), store)

	req := NewRequest(1, "alice", "bob", "")
	_, err := applier.Apply(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending")
}

func TestApplySwapRejectsConstraintViolation(t *testing.T) {
	store := newFakeStore()
	store.schedules["s1"] = roster.Schedule{ID: "s1", Status: roster.SchedulePublished}
	store.addMember("alice")
	store.addMember("bob")
	target := store.addAssignment(roster.Assignment{
		ID: 1, ScheduleID: "s1", Date: date(2025, time.January, 8),
		Kind: roster.TaskATMMorning, MemberID: "alice",
	})
	// Bob already works that day
	store.addAssignment(roster.Assignment{
		ID: 2, ScheduleID: "s1", Date: date(2025, time.January, 8),
		Kind: roster.TaskATMMidnight, MemberID: "bob",
	})

	applier := NewApplier(testCfg(), store)
	_, err := applier.Apply(context.Background(), approvedRequest(target.ID, "bob"))

	assert.Equal(t, ConstraintSameDay, constraintOf(t, err))
	// Nothing moved
	assert.Equal(t, "alice", store.assignments[target.ID].MemberID)
	assert.Equal(t, roster.AssignmentActive, store.assignments[target.ID].Status)
}

func TestApplySwapRejectsArchivedSchedule(t *testing.T) {
	store := newFakeStore()
	store.schedules["s1"] = roster.Schedule{ID: "s1", Status: roster.ScheduleArchived}
	store.addMember("alice")
	store.addMember("bob")
	target := store.addAssignment(roster.Assignment{
		ID: 1, ScheduleID: "s1", Date: date(2025, time.January, 8),
		Kind: roster.TaskATMMorning, MemberID: "alice",
	})

	applier := NewApplier(testCfg(), store)
	_, err := applier.Apply(context.Background(), approvedRequest(target.ID, "bob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archived")
}

func TestApplySwapRejectsInactiveMember(t *testing.T) {
	store := newFakeStore()
	store.schedules["s1"] = roster.Schedule{ID: "s1", Status: roster.ScheduleDraft}
	store.addMember("alice")
	bob := member("bob")
	bob.Active = false
	store.members["bob"] = bob
	target := store.addAssignment(roster.Assignment{
		ID: 1, ScheduleID: "s1", Date: date(2025, time.January, 8),
		Kind: roster.TaskATMMorning, MemberID: "alice",
	})

	applier := NewApplier(testCfg(), store)
	_, err := applier.Apply(context.Background(), approvedRequest(target.ID, "bob"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactive")
}

func TestApplySwapRejectsSelfSwap(t *testing.T) {
	store := newFakeStore()
	store.schedules["s1"] = roster.Schedule{ID: "s1", Status: roster.ScheduleDraft}
	store.addMember("alice")
	target := store.addAssignment(roster.Assignment{
		ID: 1, ScheduleID: "s1", Date: date(2025, time.January, 8),
		Kind: roster.TaskATMMorning, MemberID: "alice",
	})

	applier := NewApplier(testCfg(), store)
	_, err := applier.Apply(context.Background(), approvedRequest(target.ID, "alice"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already belongs")
}

func TestReassignMovesWholeWeek(t *testing.T) {
	store := newFakeStore()
	store.schedules["s1"] = roster.Schedule{ID: "s1", Status: roster.SchedulePublished}
	store.addMember("alice")
	store.addMember("bob")

	ws := date(2025, time.January, 6)
	var firstID int64
	for i := 0; i < 6; i++ {
		a := store.addAssignment(roster.Assignment{
			ScheduleID: "s1", Date: timeutil.AddDays(ws, i),
			Kind: roster.TaskSysAidMaker, ShiftLabel: "Week",
			MemberID: "alice", WeekStart: &ws,
		})
		if i == 0 {
			firstID = a.ID
		}
	}

	applier := NewApplier(testCfg(), store)
	replaced, err := applier.Reassign(context.Background(), firstID, "bob")
	require.NoError(t, err)

	// All six rows of the week move together
	assert.Len(t, replaced, 6)
	for _, a := range replaced {
		assert.Equal(t, "bob", a.MemberID)
	}
	require.Len(t, store.entries, 1)
	assert.Equal(t, audit.ActionReassign, store.entries[0].Action)
}

func TestSwapRoundTripRestoresMember(t *testing.T) {
	store := newFakeStore()
	store.schedules["s1"] = roster.Schedule{ID: "s1", Status: roster.SchedulePublished}
	store.addMember("alice")
	store.addMember("bob")
	target := store.addAssignment(roster.Assignment{
		ID: 1, ScheduleID: "s1", Date: date(2025, time.January, 8),
		Kind: roster.TaskATMMorning, MemberID: "alice",
	})

	applier := NewApplier(testCfg(), store)

	replaced, err := applier.Apply(context.Background(), approvedRequest(target.ID, "bob"))
	require.NoError(t, err)
	require.Len(t, replaced, 1)

	back, err := applier.Apply(context.Background(), approvedRequest(replaced[0].ID, "alice"))
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, "alice", back[0].MemberID)
}
