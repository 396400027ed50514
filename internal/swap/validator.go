package swap

import (
	"time"

	"github.com/opsdesk/duty-roster/internal/availability"
	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// Validator checks a proposed reassignment against the same constraints the
// generator enforces. It is pure: callers hand it the availability view and
// the active assignments surrounding the target.
type Validator struct {
	cfg config.SchedulingConfig
}

// NewValidator creates a validator for the given scheduling rules.
func NewValidator(cfg config.SchedulingConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate reports the first constraint the candidate member would violate by
// taking over the target assignment. The context slice must hold the active
// assignments around the target date, including other rows of the target's
// own schedule; rows belonging to the target itself are ignored.
func (v *Validator) Validate(target roster.Assignment, candidate roster.Member, context []roster.Assignment, view *availability.View) error {
	if target.Kind.IsATM() {
		return v.validateATM(target, candidate, context, view)
	}
	return v.validateWeekly(target, candidate, context, view)
}

func (v *Validator) validateATM(target roster.Assignment, candidate roster.Member, context []roster.Assignment, view *availability.View) error {
	day := timeutil.Normalize(target.Date)

	if !view.IsAvailable(candidate.ID, day) {
		return violation(ConstraintUnavailability, "%s is unavailable on %s", candidate.ID, timeutil.DayKey(day))
	}

	for _, a := range relevant(context, target, candidate.ID) {
		gap := timeutil.DaysBetween(a.Date, day)

		// A Mid/Night the day before makes the target date a rest day
		if a.Kind == roster.TaskATMMidnight && gap == 1 && v.cfg.ATMRestRuleEnabled {
			return violation(ConstraintRestRule, "%s rests on %s after a Mid/Night shift", candidate.ID, timeutil.DayKey(day))
		}
		// Taking a Mid/Night makes the next day a rest day; it must be free
		if target.Kind == roster.TaskATMMidnight && gap == -1 && v.cfg.ATMRestRuleEnabled {
			return violation(ConstraintRestRule, "%s is already assigned on the rest day after %s", candidate.ID, timeutil.DayKey(day))
		}
		if target.Kind == roster.TaskATMMidnight && a.Kind == roster.TaskATMMidnight {
			abs := gap
			if abs < 0 {
				abs = -abs
			}
			if abs <= v.cfg.ATMBCooldownDays {
				return violation(ConstraintCooldown, "%s has another Mid/Night within %d days of %s", candidate.ID, v.cfg.ATMBCooldownDays, timeutil.DayKey(day))
			}
		}
		if a.Kind.IsATM() && gap == 0 {
			return violation(ConstraintSameDay, "%s already holds an ATM shift on %s", candidate.ID, timeutil.DayKey(day))
		}
	}
	return nil
}

func (v *Validator) validateWeekly(target roster.Assignment, candidate roster.Member, context []roster.Assignment, view *availability.View) error {
	weekStart, weekEnd := timeutil.WeekBucket(target.Date)
	if target.WeekStart != nil {
		weekStart = timeutil.Normalize(*target.WeekStart)
		weekEnd = timeutil.AddDays(weekStart, 5)
	}

	if !candidate.HasOfficeDays(v.cfg.RequiredOfficeDays()) {
		return violation(ConstraintOfficeDay, "%s does not cover the required office days", candidate.ID)
	}
	if !view.IsAvailableAll(candidate.ID, weekStart, weekEnd) {
		return violation(ConstraintUnavailability, "%s is unavailable during week %s", candidate.ID, timeutil.DayKey(weekStart))
	}

	otherRole := roster.TaskSysAidChecker
	if target.Kind == roster.TaskSysAidChecker {
		otherRole = roster.TaskSysAidMaker
	}

	for _, a := range relevant(context, target, candidate.ID) {
		// A Mid/Night whose rest day lands inside the week blocks the role
		if a.Kind == roster.TaskATMMidnight && v.cfg.ATMRestRuleEnabled {
			rest := timeutil.AddDays(a.Date, 1)
			if !rest.Before(weekStart) && !rest.After(weekEnd) {
				return violation(ConstraintRestRule, "%s has a rest day inside week %s", candidate.ID, timeutil.DayKey(weekStart))
			}
		}
		if a.Kind == otherRole && a.WeekStart != nil && timeutil.SameDay(*a.WeekStart, weekStart) {
			return violation(ConstraintMakerCheckerDistinct, "%s already holds the %s role for week %s", candidate.ID, otherRole, timeutil.DayKey(weekStart))
		}
	}
	return nil
}

// relevant filters the context down to the candidate's own active rows,
// dropping the target row and, for weekly targets, its sibling rows.
func relevant(context []roster.Assignment, target roster.Assignment, memberID string) []roster.Assignment {
	var out []roster.Assignment
	for _, a := range context {
		if a.Status != roster.AssignmentActive || a.MemberID != memberID {
			continue
		}
		if a.ID == target.ID && target.ID != 0 {
			continue
		}
		if sameWeeklyGroup(a, target) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// sameWeeklyGroup reports whether two rows belong to the same weekly role
// block, which moves as a unit during a swap.
func sameWeeklyGroup(a, target roster.Assignment) bool {
	if target.Kind.IsATM() || a.Kind != target.Kind {
		return false
	}
	if a.ScheduleID != target.ScheduleID {
		return false
	}
	if a.WeekStart == nil || target.WeekStart == nil {
		return false
	}
	return timeutil.SameDay(*a.WeekStart, *target.WeekStart)
}

// WeekSpan returns the Monday-to-Saturday span a weekly assignment belongs
// to, used by callers assembling validation context.
func WeekSpan(target roster.Assignment) (time.Time, time.Time) {
	if target.WeekStart != nil {
		start := timeutil.Normalize(*target.WeekStart)
		return start, timeutil.AddDays(start, 5)
	}
	return timeutil.WeekBucket(target.Date)
}
