package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdesk/duty-roster/internal/audit"
	"github.com/opsdesk/duty-roster/internal/availability"
	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/logging"
	"github.com/opsdesk/duty-roster/internal/roster"
	appsignals "github.com/opsdesk/duty-roster/internal/signals"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// Store is the persistence surface the applier needs. ApplySwap must be
// atomic: it supersedes the old rows, inserts replacements for the new
// member, moves the fairness counts and records the audit entry in one
// transaction.
type Store interface {
	AssignmentByID(ctx context.Context, id int64) (roster.Assignment, error)
	ScheduleByID(ctx context.Context, id string) (roster.Schedule, error)
	MemberByID(ctx context.Context, id string) (roster.Member, error)
	UnavailablePeriods(ctx context.Context) ([]roster.UnavailablePeriod, error)
	AssignmentsBetween(ctx context.Context, start, end time.Time) ([]roster.Assignment, error)
	ApplySwap(ctx context.Context, target roster.Assignment, toMemberID string, entry audit.Entry) ([]roster.Assignment, error)
}

// Applier validates and executes approved swap requests and direct admin
// reassignments.
type Applier struct {
	cfg       config.SchedulingConfig
	store     Store
	validator *Validator
	logger    zerolog.Logger
}

// NewApplier creates an applier bound to a store.
func NewApplier(cfg config.SchedulingConfig, store Store) *Applier {
	return &Applier{
		cfg:       cfg,
		store:     store,
		validator: NewValidator(cfg),
		logger:    logging.GetLogger("swap"),
	}
}

// Apply executes an approved swap request: the target assignment (the whole
// week for weekly kinds) moves to the request's member. The request must have
// both approvals.
func (a *Applier) Apply(ctx context.Context, req *Request) ([]roster.Assignment, error) {
	if req.Status != StatusApproved {
		return nil, fmt.Errorf("cannot apply a %s swap request", req.Status)
	}
	replaced, err := a.reassign(ctx, req.AssignmentID, req.ToMemberID, audit.ActionSwap)
	if err != nil {
		return nil, err
	}
	if err := req.MarkApplied(time.Now()); err != nil {
		return nil, err
	}
	return replaced, nil
}

// Reassign moves an assignment directly, without the peer approval step.
// Admin-only; the caller enforces the role.
func (a *Applier) Reassign(ctx context.Context, assignmentID int64, toMemberID string) ([]roster.Assignment, error) {
	return a.reassign(ctx, assignmentID, toMemberID, audit.ActionReassign)
}

func (a *Applier) reassign(ctx context.Context, assignmentID int64, toMemberID string, action audit.Action) ([]roster.Assignment, error) {
	target, err := a.store.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment %d: %w", assignmentID, err)
	}
	if target.Status != roster.AssignmentActive {
		return nil, fmt.Errorf("assignment %d is not active", assignmentID)
	}
	if target.MemberID == toMemberID {
		return nil, fmt.Errorf("assignment %d already belongs to %s", assignmentID, toMemberID)
	}

	schedule, err := a.store.ScheduleByID(ctx, target.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule %s: %w", target.ScheduleID, err)
	}
	if schedule.Status == roster.ScheduleArchived {
		return nil, fmt.Errorf("schedule %s is archived and cannot be modified", schedule.ID)
	}

	candidate, err := a.store.MemberByID(ctx, toMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member %s: %w", toMemberID, err)
	}
	if !candidate.Active {
		return nil, fmt.Errorf("member %s is inactive", toMemberID)
	}

	periods, err := a.store.UnavailablePeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load unavailable periods: %w", err)
	}
	view := availability.NewView(periods)

	// Pull enough surrounding rows to evaluate rest, cooldown and week rules
	spanStart, spanEnd := WeekSpan(target)
	margin := a.cfg.ATMBCooldownDays + 1
	contextRows, err := a.store.AssignmentsBetween(ctx,
		timeutil.AddDays(spanStart, -margin), timeutil.AddDays(spanEnd, margin))
	if err != nil {
		return nil, fmt.Errorf("failed to load surrounding assignments: %w", err)
	}

	if err := a.validator.Validate(target, candidate, contextRows, view); err != nil {
		return nil, err
	}

	entry := audit.Entry{
		ScheduleID: target.ScheduleID,
		Action:     action,
		Date:       target.Date,
		WeekStart:  target.WeekStart,
		Kind:       target.Kind,
		ShiftLabel: target.ShiftLabel,
		MemberID:   toMemberID,
	}

	replaced, err := a.store.ApplySwap(ctx, target, toMemberID, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to apply swap: %w", err)
	}

	a.logger.Info().
		Int64("assignment_id", target.ID).
		Str("from", target.MemberID).
		Str("to", toMemberID).
		Str("action", string(action)).
		Msg("Assignment reassigned")
	appsignals.EmitSwapApplied(ctx, target.ID, target.MemberID, toMemberID)

	return replaced, nil
}
