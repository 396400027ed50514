// Package signals wires in-process events between the scheduling engine and
// the rest of the application.
package signals

import (
	"context"

	"github.com/maniartech/signals"
)

// ScheduleGeneratedData is emitted after a generation commits.
type ScheduleGeneratedData struct {
	ScheduleID  string
	Assignments int
	Warnings    int
}

// SwapAppliedData is emitted after an approved swap mutates an assignment.
type SwapAppliedData struct {
	AssignmentID int64
	FromMemberID string
	ToMemberID   string
}

// Signal definitions using generics
var ScheduleGenerated = signals.New[ScheduleGeneratedData]()
var SwapApplied = signals.New[SwapAppliedData]()

// EmitScheduleGenerated emits a signal when a schedule generation commits
func EmitScheduleGenerated(ctx context.Context, scheduleID string, assignments, warnings int) {
	ScheduleGenerated.Emit(ctx, ScheduleGeneratedData{
		ScheduleID:  scheduleID,
		Assignments: assignments,
		Warnings:    warnings,
	})
}

// EmitSwapApplied emits a signal when a swap or reassignment is applied
func EmitSwapApplied(ctx context.Context, assignmentID int64, from, to string) {
	SwapApplied.Emit(ctx, SwapAppliedData{
		AssignmentID: assignmentID,
		FromMemberID: from,
		ToMemberID:   to,
	})
}

// OnScheduleGenerated registers a handler for generation events
func OnScheduleGenerated(handler func(ctx context.Context, data ScheduleGeneratedData), key ...string) {
	if len(key) > 0 {
		ScheduleGenerated.AddListener(handler, key[0])
	} else {
		ScheduleGenerated.AddListener(handler)
	}
}

// OnSwapApplied registers a handler for swap application events
func OnSwapApplied(handler func(ctx context.Context, data SwapAppliedData), key ...string) {
	if len(key) > 0 {
		SwapApplied.AddListener(handler, key[0])
	} else {
		SwapApplied.AddListener(handler)
	}
}
