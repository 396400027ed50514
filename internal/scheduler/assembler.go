package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opsdesk/duty-roster/internal/audit"
	"github.com/opsdesk/duty-roster/internal/availability"
	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/fairness"
	"github.com/opsdesk/duty-roster/internal/logging"
	"github.com/opsdesk/duty-roster/internal/roster"
	appsignals "github.com/opsdesk/duty-roster/internal/signals"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// Store is the persistence boundary of a generation: snapshot reads up front,
// one atomic write at the end.
type Store interface {
	// Members returns all team members, including inactive ones.
	Members(ctx context.Context) ([]roster.Member, error)

	// UnavailablePeriods returns all recorded unavailable periods.
	UnavailablePeriods(ctx context.Context) ([]roster.UnavailablePeriod, error)

	// AssignmentsBetween returns active assignments with a date inside the
	// inclusive range, across all schedules.
	AssignmentsBetween(ctx context.Context, start, end time.Time) ([]roster.Assignment, error)

	// SaveGeneration atomically persists the schedule, its assignments, the
	// audit entries and the fairness snapshot. Returns assignments with IDs.
	SaveGeneration(ctx context.Context, schedule roster.Schedule, assignments []roster.Assignment, entries []audit.Entry, counts []roster.FairnessCount) ([]roster.Assignment, error)
}

// Request describes one generation run.
type Request struct {
	Start          time.Time
	End            time.Time
	Seed           *int64 // nil picks a wall-clock seed
	Aggressiveness int    // 0 uses the configured default
	TeamKey        string // advisory lock key; empty means the default team
}

// Result is the outcome of a successful generation.
type Result struct {
	Schedule     roster.Schedule
	Assignments  []roster.Assignment
	AuditEntries []audit.Entry
	Warnings     []string
}

// Assembler drives a full generation: snapshot, ledger seeding, ATM phase,
// SysAid phase, atomic write-back.
type Assembler struct {
	cfg    config.SchedulingConfig
	store  Store
	locks  *teamLocks
	logger zerolog.Logger
}

// NewAssembler creates an assembler bound to a store.
func NewAssembler(cfg config.SchedulingConfig, store Store) *Assembler {
	return &Assembler{
		cfg:    cfg,
		store:  store,
		locks:  newTeamLocks(),
		logger: logging.GetLogger("assembler"),
	}
}

// Generate produces a draft schedule for the requested range. Warnings never
// fail a generation; only invalid input and storage failures do.
func (a *Assembler) Generate(ctx context.Context, req Request) (*Result, error) {
	start := timeutil.Normalize(req.Start)
	end := timeutil.Normalize(req.End)
	if end.Before(start) {
		return nil, &InputError{Reason: fmt.Sprintf("end date %s before start date %s", timeutil.DayKey(end), timeutil.DayKey(start))}
	}

	aggressiveness := req.Aggressiveness
	if aggressiveness == 0 {
		aggressiveness = a.cfg.DefaultAggressiveness
	}
	if aggressiveness < 1 || aggressiveness > 5 {
		return nil, &InputError{Reason: fmt.Sprintf("aggressiveness must be between 1 and 5, got %d", aggressiveness)}
	}

	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	teamKey := req.TeamKey
	if teamKey == "" {
		teamKey = "default"
	}
	if !a.locks.tryAcquire(teamKey) {
		return nil, ErrGenerationInProgress
	}
	defer a.locks.release(teamKey)

	genLogger := a.logger.With().
		Str("start_date", timeutil.DayKey(start)).
		Str("end_date", timeutil.DayKey(end)).
		Int64("seed", seed).
		Int("aggressiveness", aggressiveness).
		Logger()
	genLogger.Info().Msg("Generating schedule")

	// Read snapshot
	allMembers, err := a.store.Members(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	var members []roster.Member
	known := make(map[string]bool, len(allMembers))
	for _, m := range allMembers {
		known[m.ID] = true
		if m.Active {
			members = append(members, m)
		}
	}
	periods, err := a.store.UnavailablePeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load unavailable periods: %w", err)
	}
	for _, p := range periods {
		if !known[p.MemberID] {
			return nil, &InputError{Reason: fmt.Sprintf("unavailable period references unknown member %q", p.MemberID)}
		}
	}
	view := availability.NewView(periods)

	// Seed the ledger and the rest/cooldown state from persisted history
	windowStart := timeutil.AddDays(start, -a.cfg.FairnessWindowDays)
	history, err := a.store.AssignmentsBetween(ctx, windowStart, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment history: %w", err)
	}
	ledger := fairness.NewLedger(a.cfg.FairnessWindowDays)
	ledger.RecomputeFromHistory(history, start)

	state := NewRestState()
	for _, h := range history {
		if h.Status != roster.AssignmentActive || h.Kind != roster.TaskATMMidnight {
			continue
		}
		state.RecordMidnight(h.MemberID, h.Date)
		if a.cfg.ATMRestRuleEnabled {
			state.MarkRest(h.MemberID, timeutil.AddDays(h.Date, 1))
		}
	}
	genLogger.Debug().
		Int("members", len(members)).
		Int("history_assignments", len(history)).
		Msg("Snapshot loaded, ledger seeded")

	selector := fairness.NewSelector(ledger, seed, aggressiveness)
	log := audit.NewLog()

	atm := NewATMScheduler(a.cfg, view, ledger, selector, log)
	atmAssignments, err := atm.Schedule(ctx, members, start, end, state)
	if err != nil {
		return nil, err
	}

	sysaid := NewSysAidScheduler(a.cfg, view, ledger, selector, log)
	sysaidAssignments, err := sysaid.Schedule(ctx, members, start, end, state)
	if err != nil {
		return nil, err
	}

	schedule := roster.Schedule{
		ID:             uuid.NewString(),
		StartDate:      start,
		EndDate:        end,
		Status:         roster.ScheduleDraft,
		Seed:           seed,
		Aggressiveness: aggressiveness,
		CreatedAt:      time.Now(),
	}

	assignments := make([]roster.Assignment, 0, len(atmAssignments)+len(sysaidAssignments))
	assignments = append(assignments, atmAssignments...)
	assignments = append(assignments, sysaidAssignments...)
	for i := range assignments {
		assignments[i].ScheduleID = schedule.ID
	}
	roster.SortAssignments(assignments)

	entries := log.Entries()
	for i := range entries {
		entries[i].ScheduleID = schedule.ID
	}

	saved, err := a.store.SaveGeneration(ctx, schedule, assignments, entries, ledger.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to persist generation: %w", err)
	}

	warnings := log.Warnings()
	genLogger.Info().
		Str("schedule_id", schedule.ID).
		Int("assignments", len(saved)).
		Int("warnings", len(warnings)).
		Msg("Schedule generation complete")

	appsignals.EmitScheduleGenerated(ctx, schedule.ID, len(saved), len(warnings))

	return &Result{
		Schedule:     schedule,
		Assignments:  saved,
		AuditEntries: entries,
		Warnings:     warnings,
	}, nil
}

// teamLocks is the advisory in-process lock guaranteeing at most one
// in-flight generation per team.
type teamLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func newTeamLocks() *teamLocks {
	return &teamLocks{held: make(map[string]bool)}
}

func (l *teamLocks) tryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false
	}
	l.held[key] = true
	return true
}

func (l *teamLocks) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
}
