package roster

import (
	"sort"
	"time"
)

// AssignmentStatus is the lifecycle status of an assignment row.
type AssignmentStatus string

const (
	AssignmentActive     AssignmentStatus = "active"
	AssignmentSuperseded AssignmentStatus = "superseded"
)

// Assignment is one member×date×kind×shift slot of a schedule.
type Assignment struct {
	ID         int64
	ScheduleID string
	Date       time.Time
	Kind       TaskKind
	ShiftLabel string
	MemberID   string
	WeekStart  *time.Time // set for weekly kinds only
	Status     AssignmentStatus
	CreatedAt  time.Time
}

// ScheduleStatus is the lifecycle status of a schedule.
type ScheduleStatus string

const (
	ScheduleDraft     ScheduleStatus = "draft"
	SchedulePublished ScheduleStatus = "published"
	ScheduleArchived  ScheduleStatus = "archived"
)

// CanTransitionTo enforces the draft -> published -> archived status machine.
func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	switch s {
	case ScheduleDraft:
		return next == SchedulePublished
	case SchedulePublished:
		return next == ScheduleArchived
	default:
		return false
	}
}

// Schedule is a versioned generation result owning a set of assignments.
type Schedule struct {
	ID             string
	StartDate      time.Time
	EndDate        time.Time
	Status         ScheduleStatus
	Seed           int64
	Aggressiveness int
	CreatedAt      time.Time
}

// FairnessCount is a persisted ledger entry: assignments of one kind for one
// member inside the rolling window.
type FairnessCount struct {
	MemberID    string
	Kind        TaskKind
	Count       int
	WindowStart time.Time
	WindowEnd   time.Time
}

// SortAssignments orders assignments by (date, canonical kind order, shift
// label), the stable iteration order guaranteed to renderers.
func SortAssignments(assignments []Assignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		ad, bd := a.Date.Format("2006-01-02"), b.Date.Format("2006-01-02")
		if ad != bd {
			return ad < bd
		}
		if a.Kind.CanonicalOrder() != b.Kind.CanonicalOrder() {
			return a.Kind.CanonicalOrder() < b.Kind.CanonicalOrder()
		}
		return a.ShiftLabel < b.ShiftLabel
	})
}
