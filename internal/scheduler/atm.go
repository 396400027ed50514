package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdesk/duty-roster/internal/audit"
	"github.com/opsdesk/duty-roster/internal/availability"
	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/fairness"
	"github.com/opsdesk/duty-roster/internal/logging"
	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// ATMScheduler fills the daily ATM shift plan over a date range, maintaining
// the rest and cooldown state consumed afterwards by the SysAid phase.
type ATMScheduler struct {
	cfg      config.SchedulingConfig
	plan     roster.DayShiftPlan
	view     *availability.View
	ledger   *fairness.Ledger
	selector *fairness.Selector
	log      *audit.Log
	logger   zerolog.Logger
}

// NewATMScheduler creates an ATM scheduler over the canonical shift plan.
func NewATMScheduler(cfg config.SchedulingConfig, view *availability.View, ledger *fairness.Ledger, selector *fairness.Selector, log *audit.Log) *ATMScheduler {
	return &ATMScheduler{
		cfg:      cfg,
		plan:     roster.CanonicalDayShiftPlan(),
		view:     view,
		ledger:   ledger,
		selector: selector,
		log:      log,
		logger:   logging.GetLogger("atm-scheduler"),
	}
}

// Schedule iterates the date range front to back and fills every shift of the
// day plan. Insufficient candidates produce a warning and an unfilled slot,
// never an error. Cancellation is honored between days.
func (s *ATMScheduler) Schedule(ctx context.Context, members []roster.Member, start, end time.Time, state *RestState) ([]roster.Assignment, error) {
	genLogger := s.logger.With().
		Str("start_date", timeutil.DayKey(start)).
		Str("end_date", timeutil.DayKey(end)).
		Logger()
	genLogger.Info().Msg("Scheduling ATM shifts")

	var assignments []roster.Assignment
	for _, day := range timeutil.IterDays(start, end) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}

		dayLogger := genLogger.With().Str("date", timeutil.DayKey(day)).Logger()
		assignedToday := make(map[string]bool)
		filled := 0

		for _, shift := range s.plan[day.Weekday()] {
			for slot := 0; slot < shift.RequiredCount; slot++ {
				eligible := eligibleForATM(members, day, shift.Kind, s.cfg, s.view, state, assignedToday)
				if len(eligible) == 0 {
					s.log.Warn(audit.Entry{
						Date:       day,
						Kind:       shift.Kind,
						ShiftLabel: shift.Label,
					}, fmt.Sprintf("no eligible member for %s %s on %s", shift.Kind, shift.Label, timeutil.DayKey(day)))
					continue
				}

				selection, err := s.selector.Select(eligible, shift.Kind, timeutil.DayKey(day))
				if err != nil {
					return nil, fmt.Errorf("failed to select assignee for %s on %s: %w", shift.Label, timeutil.DayKey(day), err)
				}

				assignments = append(assignments, roster.Assignment{
					Date:       day,
					Kind:       shift.Kind,
					ShiftLabel: shift.Label,
					MemberID:   selection.MemberID,
					Status:     roster.AssignmentActive,
				})
				assignedToday[selection.MemberID] = true
				filled++
				s.ledger.Increment(selection.MemberID, shift.Kind)

				if shift.Kind == roster.TaskATMMidnight {
					state.RecordMidnight(selection.MemberID, day)
					if s.cfg.ATMRestRuleEnabled {
						state.MarkRest(selection.MemberID, timeutil.AddDays(day, 1))
					}
				}

				s.log.Record(audit.Entry{
					Date:       day,
					Kind:       shift.Kind,
					ShiftLabel: shift.Label,
					MemberID:   selection.MemberID,
					Candidates: selection.Ranked,
					Reason:     selection.Reason,
				})
				dayLogger.Debug().
					Str("shift", shift.Label).
					Str("member", selection.MemberID).
					Str("reason", string(selection.Reason)).
					Msg("Assigned ATM shift")
			}
		}

		if filled == 0 && len(s.plan[day.Weekday()]) > 0 {
			dayLogger.Warn().Msg("No ATM shift could be filled for this day")
		}
	}

	genLogger.Info().Int("assignments", len(assignments)).Msg("ATM scheduling complete")
	return assignments, nil
}
