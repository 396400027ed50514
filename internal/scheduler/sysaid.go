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

// sysAidShiftLabel is the shift label carried by weekly SysAid rows; the kind
// already encodes the role.
const sysAidShiftLabel = "Week"

// SysAidScheduler assigns the weekly maker/checker pair per Monday-keyed
// week, consuming the rest state produced by the ATM phase.
type SysAidScheduler struct {
	cfg      config.SchedulingConfig
	view     *availability.View
	ledger   *fairness.Ledger
	selector *fairness.Selector
	log      *audit.Log
	logger   zerolog.Logger
}

// NewSysAidScheduler creates a SysAid scheduler.
func NewSysAidScheduler(cfg config.SchedulingConfig, view *availability.View, ledger *fairness.Ledger, selector *fairness.Selector, log *audit.Log) *SysAidScheduler {
	return &SysAidScheduler{
		cfg:      cfg,
		view:     view,
		ledger:   ledger,
		selector: selector,
		log:      log,
		logger:   logging.GetLogger("sysaid-scheduler"),
	}
}

// Schedule buckets the range into Mon-Sat weeks and assigns one maker and one
// checker per week. Each role emits one assignment row per assigned day but
// counts once per week in the ledger. Fewer than two eligible members skips
// the whole week with a warning.
func (s *SysAidScheduler) Schedule(ctx context.Context, members []roster.Member, start, end time.Time, state *RestState) ([]roster.Assignment, error) {
	genLogger := s.logger.With().
		Str("start_date", timeutil.DayKey(start)).
		Str("end_date", timeutil.DayKey(end)).
		Logger()
	genLogger.Info().Msg("Scheduling SysAid weeks")

	weekDays := s.cfg.WeekDays()
	processed := make(map[string]bool)

	var assignments []roster.Assignment
	for _, day := range timeutil.IterDays(start, end) {
		weekStart, weekEnd := timeutil.WeekBucket(day)
		weekKey := timeutil.DayKey(weekStart)
		if processed[weekKey] {
			continue
		}
		processed[weekKey] = true

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation cancelled: %w", err)
		}

		weekLogger := genLogger.With().Str("week_start", weekKey).Logger()

		// Assigned days clipped to the schedule range; a week contributing no
		// days (a range starting on Sunday) is skipped entirely
		var weekAssignedDays []time.Time
		for _, weekDay := range timeutil.IterDays(weekStart, weekEnd) {
			if !weekDays[weekDay.Weekday()] {
				continue
			}
			if weekDay.Before(timeutil.Normalize(start)) || weekDay.After(timeutil.Normalize(end)) {
				continue
			}
			weekAssignedDays = append(weekAssignedDays, weekDay)
		}
		if len(weekAssignedDays) == 0 {
			continue
		}

		eligible := eligibleForSysAid(members, weekStart, weekEnd, s.cfg, s.view, state)
		if len(eligible) < 2 {
			s.log.Warn(audit.Entry{
				Date:       weekStart,
				WeekStart:  &weekStart,
				Kind:       roster.TaskSysAidMaker,
				ShiftLabel: sysAidShiftLabel,
			}, fmt.Sprintf("insufficient eligible members for SysAid week %s (need 2, found %d)", weekKey, len(eligible)))
			continue
		}

		maker, err := s.selector.Select(eligible, roster.TaskSysAidMaker, weekKey)
		if err != nil {
			return nil, fmt.Errorf("failed to select maker for week %s: %w", weekKey, err)
		}
		checker, err := s.selector.Select(withoutMember(eligible, maker.MemberID), roster.TaskSysAidChecker, weekKey)
		if err != nil {
			return nil, fmt.Errorf("failed to select checker for week %s: %w", weekKey, err)
		}

		// One row per assigned day per role
		for _, weekDay := range weekAssignedDays {
			ws := weekStart
			assignments = append(assignments,
				roster.Assignment{
					Date:       weekDay,
					Kind:       roster.TaskSysAidMaker,
					ShiftLabel: sysAidShiftLabel,
					MemberID:   maker.MemberID,
					WeekStart:  &ws,
					Status:     roster.AssignmentActive,
				},
				roster.Assignment{
					Date:       weekDay,
					Kind:       roster.TaskSysAidChecker,
					ShiftLabel: sysAidShiftLabel,
					MemberID:   checker.MemberID,
					WeekStart:  &ws,
					Status:     roster.AssignmentActive,
				},
			)
		}

		// A weekly role counts once per week, not once per day
		s.ledger.Increment(maker.MemberID, roster.TaskSysAidMaker)
		s.ledger.Increment(checker.MemberID, roster.TaskSysAidChecker)

		s.log.Record(audit.Entry{
			Date:       weekStart,
			WeekStart:  &weekStart,
			Kind:       roster.TaskSysAidMaker,
			ShiftLabel: sysAidShiftLabel,
			MemberID:   maker.MemberID,
			Candidates: maker.Ranked,
			Reason:     maker.Reason,
		})
		s.log.Record(audit.Entry{
			Date:       weekStart,
			WeekStart:  &weekStart,
			Kind:       roster.TaskSysAidChecker,
			ShiftLabel: sysAidShiftLabel,
			MemberID:   checker.MemberID,
			Candidates: checker.Ranked,
			Reason:     checker.Reason,
		})

		weekLogger.Info().
			Str("maker", maker.MemberID).
			Str("checker", checker.MemberID).
			Msg("Assigned SysAid week")
	}

	genLogger.Info().Int("assignments", len(assignments)).Msg("SysAid scheduling complete")
	return assignments, nil
}
