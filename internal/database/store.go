package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdesk/duty-roster/internal/audit"
	"github.com/opsdesk/duty-roster/internal/fairness"
	"github.com/opsdesk/duty-roster/internal/logging"
	"github.com/opsdesk/duty-roster/internal/roster"
	"github.com/opsdesk/duty-roster/internal/swap"
	"github.com/opsdesk/duty-roster/internal/timeutil"
)

// Store persists the roster domain in SQLite. It satisfies both the
// scheduler's and the swap applier's store interfaces.
type Store struct {
	db     *DB
	logger zerolog.Logger
}

// NewStore creates a store over an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db, logger: logging.GetLogger("store")}
}

// weekdayOrder fixes the serialization order of office day sets.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func encodeOfficeDays(days map[time.Weekday]bool) string {
	var names []string
	for _, d := range weekdayOrder {
		if days[d] {
			names = append(names, d.String())
		}
	}
	return strings.Join(names, ",")
}

func decodeOfficeDays(encoded string) map[time.Weekday]bool {
	days := make(map[time.Weekday]bool)
	if encoded == "" {
		return days
	}
	byName := make(map[string]time.Weekday, len(weekdayOrder))
	for _, d := range weekdayOrder {
		byName[d.String()] = d
	}
	for _, name := range strings.Split(encoded, ",") {
		if d, ok := byName[strings.TrimSpace(name)]; ok {
			days[d] = true
		}
	}
	return days
}

func parseDay(value string) (time.Time, error) {
	return timeutil.ParseDate(value, time.UTC)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SaveMember inserts or updates a member.
func (s *Store) SaveMember(ctx context.Context, m roster.Member) error {
	now := formatTime(time.Now())
	_, err := s.db.Conn().ExecContext(ctx, `
INSERT INTO members (id, name, email, role, office_days, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name = excluded.name,
  email = excluded.email,
  role = excluded.role,
  office_days = excluded.office_days,
  active = excluded.active,
  updated_at = excluded.updated_at`,
		m.ID, m.Name, m.Email, string(m.Role), encodeOfficeDays(m.OfficeDays), m.Active, now, now)
	if err != nil {
		return fmt.Errorf("failed to save member %s: %w", m.ID, err)
	}
	return nil
}

// Members returns all members, including inactive ones, ordered by ID.
func (s *Store) Members(ctx context.Context) ([]roster.Member, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT id, name, email, role, office_days, active, created_at, updated_at
FROM members ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []roster.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MemberByID returns one member.
func (s *Store) MemberByID(ctx context.Context, id string) (roster.Member, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
SELECT id, name, email, role, office_days, active, created_at, updated_at
FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return roster.Member{}, fmt.Errorf("member %s not found", id)
	}
	if err != nil {
		return roster.Member{}, fmt.Errorf("failed to load member %s: %w", id, err)
	}
	return m, nil
}

// DeactivateMember soft-deletes a member; history stays intact.
func (s *Store) DeactivateMember(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE members SET active = 0, updated_at = ? WHERE id = ?`, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate member %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("member %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (roster.Member, error) {
	var m roster.Member
	var role, officeDays, createdAt, updatedAt string
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &role, &officeDays, &m.Active, &createdAt, &updatedAt); err != nil {
		return roster.Member{}, err
	}
	m.Role = roster.Role(role)
	m.OfficeDays = decodeOfficeDays(officeDays)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return m, nil
}

// AddUnavailablePeriod records a period and returns it with its ID.
func (s *Store) AddUnavailablePeriod(ctx context.Context, p roster.UnavailablePeriod) (roster.UnavailablePeriod, error) {
	now := time.Now()
	res, err := s.db.Conn().ExecContext(ctx, `
INSERT INTO unavailable_periods (member_id, start_date, end_date, reason, created_at)
VALUES (?, ?, ?, ?, ?)`,
		p.MemberID, timeutil.DayKey(p.StartDate), timeutil.DayKey(p.EndDate), p.Reason, formatTime(now))
	if err != nil {
		return roster.UnavailablePeriod{}, fmt.Errorf("failed to add unavailable period: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return roster.UnavailablePeriod{}, err
	}
	p.ID = id
	p.CreatedAt = now
	return p, nil
}

// UnavailablePeriods returns all recorded periods.
func (s *Store) UnavailablePeriods(ctx context.Context) ([]roster.UnavailablePeriod, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT id, member_id, start_date, end_date, reason, created_at
FROM unavailable_periods ORDER BY member_id, start_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unavailable periods: %w", err)
	}
	defer rows.Close()

	var periods []roster.UnavailablePeriod
	for rows.Next() {
		var p roster.UnavailablePeriod
		var start, end, createdAt string
		if err := rows.Scan(&p.ID, &p.MemberID, &start, &end, &p.Reason, &createdAt); err != nil {
			return nil, err
		}
		if p.StartDate, err = parseDay(start); err != nil {
			return nil, err
		}
		if p.EndDate, err = parseDay(end); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// RemoveUnavailablePeriod deletes a period by ID.
func (s *Store) RemoveUnavailablePeriod(ctx context.Context, id int64) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM unavailable_periods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to remove unavailable period %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("unavailable period %d not found", id)
	}
	return nil
}

// SaveGeneration atomically persists the schedule, its assignments, the audit
// entries and the fairness snapshot.
func (s *Store) SaveGeneration(ctx context.Context, schedule roster.Schedule, assignments []roster.Assignment, entries []audit.Entry, counts []roster.FairnessCount) ([]roster.Assignment, error) {
	saved := make([]roster.Assignment, len(assignments))
	copy(saved, assignments)
	now := formatTime(time.Now())

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO schedules (id, start_date, end_date, status, seed, aggressiveness, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			schedule.ID, timeutil.DayKey(schedule.StartDate), timeutil.DayKey(schedule.EndDate),
			string(schedule.Status), schedule.Seed, schedule.Aggressiveness, now); err != nil {
			return fmt.Errorf("failed to insert schedule: %w", err)
		}

		for i := range saved {
			id, err := insertAssignment(ctx, tx, saved[i], now)
			if err != nil {
				return err
			}
			saved[i].ID = id
		}

		for _, e := range entries {
			if err := insertAuditEntry(ctx, tx, e, now); err != nil {
				return err
			}
		}

		return replaceFairnessCounts(ctx, tx, counts, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("schedule_id", schedule.ID).
		Int("assignments", len(saved)).
		Msg("Generation persisted")
	return saved, nil
}

func insertAssignment(ctx context.Context, tx *sql.Tx, a roster.Assignment, now string) (int64, error) {
	var weekStart any
	if a.WeekStart != nil {
		weekStart = timeutil.DayKey(*a.WeekStart)
	}
	res, err := tx.ExecContext(ctx, `
INSERT INTO assignments (schedule_id, date, kind, shift_label, member_id, week_start, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ScheduleID, timeutil.DayKey(a.Date), string(a.Kind), a.ShiftLabel,
		a.MemberID, weekStart, string(a.Status), now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert assignment for %s on %s: %w", a.MemberID, timeutil.DayKey(a.Date), err)
	}
	return res.LastInsertId()
}

func insertAuditEntry(ctx context.Context, tx *sql.Tx, e audit.Entry, now string) error {
	candidates, err := json.Marshal(e.Candidates)
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}
	warnings, err := json.Marshal(e.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}
	var weekStart any
	if e.WeekStart != nil {
		weekStart = timeutil.DayKey(*e.WeekStart)
	}
	action := e.Action
	if action == "" {
		action = audit.ActionSelect
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO audit_entries (schedule_id, action, date, week_start, kind, shift_label, member_id, candidates, reason, warnings, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ScheduleID, string(action), timeutil.DayKey(e.Date), weekStart, string(e.Kind),
		e.ShiftLabel, e.MemberID, string(candidates), string(e.Reason), string(warnings), now); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func replaceFairnessCounts(ctx context.Context, tx *sql.Tx, counts []roster.FairnessCount, now string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM fairness_counts`); err != nil {
		return fmt.Errorf("failed to clear fairness counts: %w", err)
	}
	for _, c := range counts {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO fairness_counts (member_id, kind, count, window_start, window_end, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
			c.MemberID, string(c.Kind), c.Count,
			timeutil.DayKey(c.WindowStart), timeutil.DayKey(c.WindowEnd), now); err != nil {
			return fmt.Errorf("failed to insert fairness count for %s: %w", c.MemberID, err)
		}
	}
	return nil
}

const assignmentColumns = `id, schedule_id, date, kind, shift_label, member_id, week_start, status, created_at`

func scanAssignment(row rowScanner) (roster.Assignment, error) {
	var a roster.Assignment
	var day, kind, status, createdAt string
	var weekStart sql.NullString
	if err := row.Scan(&a.ID, &a.ScheduleID, &day, &kind, &a.ShiftLabel, &a.MemberID, &weekStart, &status, &createdAt); err != nil {
		return roster.Assignment{}, err
	}
	var err error
	if a.Date, err = parseDay(day); err != nil {
		return roster.Assignment{}, err
	}
	a.Kind = roster.TaskKind(kind)
	a.Status = roster.AssignmentStatus(status)
	a.CreatedAt = parseTime(createdAt)
	if weekStart.Valid {
		ws, err := parseDay(weekStart.String)
		if err != nil {
			return roster.Assignment{}, err
		}
		a.WeekStart = &ws
	}
	return a, nil
}

func collectAssignments(rows *sql.Rows) ([]roster.Assignment, error) {
	defer rows.Close()
	var assignments []roster.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// AssignmentsBetween returns active assignments inside the inclusive date
// range, across all schedules.
func (s *Store) AssignmentsBetween(ctx context.Context, start, end time.Time) ([]roster.Assignment, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT `+assignmentColumns+` FROM assignments
WHERE status = 'active' AND date >= ? AND date <= ?
ORDER BY date, kind, shift_label`,
		timeutil.DayKey(start), timeutil.DayKey(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	return collectAssignments(rows)
}

// AssignmentByID returns one assignment row.
func (s *Store) AssignmentByID(ctx context.Context, id int64) (roster.Assignment, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return roster.Assignment{}, fmt.Errorf("assignment %d not found", id)
	}
	if err != nil {
		return roster.Assignment{}, fmt.Errorf("failed to load assignment %d: %w", id, err)
	}
	return a, nil
}

// AssignmentsForSchedule returns the active assignments of one schedule in
// render order.
func (s *Store) AssignmentsForSchedule(ctx context.Context, scheduleID string) ([]roster.Assignment, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT `+assignmentColumns+` FROM assignments
WHERE schedule_id = ? AND status = 'active'`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for schedule %s: %w", scheduleID, err)
	}
	assignments, err := collectAssignments(rows)
	if err != nil {
		return nil, err
	}
	roster.SortAssignments(assignments)
	return assignments, nil
}

// ScheduleByID returns one schedule.
func (s *Store) ScheduleByID(ctx context.Context, id string) (roster.Schedule, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
SELECT id, start_date, end_date, status, seed, aggressiveness, created_at
FROM schedules WHERE id = ?`, id)
	sched, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return roster.Schedule{}, fmt.Errorf("schedule %s not found", id)
	}
	if err != nil {
		return roster.Schedule{}, fmt.Errorf("failed to load schedule %s: %w", id, err)
	}
	return sched, nil
}

// Schedules returns all schedules, newest first.
func (s *Store) Schedules(ctx context.Context) ([]roster.Schedule, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT id, start_date, end_date, status, seed, aggressiveness, created_at
FROM schedules ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []roster.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, sched)
	}
	return schedules, rows.Err()
}

func scanSchedule(row rowScanner) (roster.Schedule, error) {
	var sched roster.Schedule
	var start, end, status, createdAt string
	if err := row.Scan(&sched.ID, &start, &end, &status, &sched.Seed, &sched.Aggressiveness, &createdAt); err != nil {
		return roster.Schedule{}, err
	}
	var err error
	if sched.StartDate, err = parseDay(start); err != nil {
		return roster.Schedule{}, err
	}
	if sched.EndDate, err = parseDay(end); err != nil {
		return roster.Schedule{}, err
	}
	sched.Status = roster.ScheduleStatus(status)
	sched.CreatedAt = parseTime(createdAt)
	return sched, nil
}

// TransitionSchedule moves a schedule along draft -> published -> archived.
func (s *Store) TransitionSchedule(ctx context.Context, id string, next roster.ScheduleStatus) error {
	sched, err := s.ScheduleByID(ctx, id)
	if err != nil {
		return err
	}
	if !sched.Status.CanTransitionTo(next) {
		return fmt.Errorf("schedule %s is %s and cannot become %s", id, sched.Status, next)
	}
	if _, err := s.db.Conn().ExecContext(ctx,
		`UPDATE schedules SET status = ? WHERE id = ?`, string(next), id); err != nil {
		return fmt.Errorf("failed to update schedule %s status: %w", id, err)
	}
	s.logger.Info().Str("schedule_id", id).Str("status", string(next)).Msg("Schedule status changed")
	return nil
}

// ApplySwap atomically supersedes the target rows (the whole week for weekly
// kinds), inserts replacements for the new member, moves one fairness unit
// and records the audit entry.
func (s *Store) ApplySwap(ctx context.Context, target roster.Assignment, toMemberID string, entry audit.Entry) ([]roster.Assignment, error) {
	now := formatTime(time.Now())
	var replaced []roster.Assignment

	err := s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		group, err := s.swapGroup(ctx, tx, target)
		if err != nil {
			return err
		}
		if len(group) == 0 {
			return fmt.Errorf("assignment %d has no active rows to swap", target.ID)
		}

		for _, old := range group {
			if _, err := tx.ExecContext(ctx,
				`UPDATE assignments SET status = 'superseded' WHERE id = ?`, old.ID); err != nil {
				return fmt.Errorf("failed to supersede assignment %d: %w", old.ID, err)
			}
			next := old
			next.MemberID = toMemberID
			next.Status = roster.AssignmentActive
			id, err := insertAssignment(ctx, tx, next, now)
			if err != nil {
				return err
			}
			next.ID = id
			replaced = append(replaced, next)
		}

		// One fairness unit moves regardless of how many rows the swap
		// touched: weekly roles count once per week
		if err := moveFairnessUnit(ctx, tx, target, toMemberID, now); err != nil {
			return err
		}

		return insertAuditEntry(ctx, tx, entry, now)
	})
	if err != nil {
		return nil, err
	}

	roster.SortAssignments(replaced)
	return replaced, nil
}

// swapGroup returns the active rows that move together with the target.
func (s *Store) swapGroup(ctx context.Context, tx *sql.Tx, target roster.Assignment) ([]roster.Assignment, error) {
	if target.Kind.IsATM() || target.WeekStart == nil {
		row := tx.QueryRowContext(ctx, `
SELECT `+assignmentColumns+` FROM assignments WHERE id = ? AND status = 'active'`, target.ID)
		a, err := scanAssignment(row)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []roster.Assignment{a}, nil
	}
	rows, err := tx.QueryContext(ctx, `
SELECT `+assignmentColumns+` FROM assignments
WHERE schedule_id = ? AND kind = ? AND week_start = ? AND status = 'active'`,
		target.ScheduleID, string(target.Kind), timeutil.DayKey(*target.WeekStart))
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly rows: %w", err)
	}
	return collectAssignments(rows)
}

func moveFairnessUnit(ctx context.Context, tx *sql.Tx, target roster.Assignment, toMemberID, now string) error {
	var windowStart, windowEnd string
	err := tx.QueryRowContext(ctx, `
SELECT window_start, window_end FROM fairness_counts WHERE member_id = ? AND kind = ?`,
		target.MemberID, string(target.Kind)).Scan(&windowStart, &windowEnd)
	if err == sql.ErrNoRows {
		// No ledger row for the outgoing member; nothing to move from, the
		// next recompute settles it
		windowStart, windowEnd = timeutil.DayKey(target.Date), timeutil.DayKey(target.Date)
	} else if err != nil {
		return fmt.Errorf("failed to load fairness count: %w", err)
	} else {
		if _, err := tx.ExecContext(ctx, `
UPDATE fairness_counts SET count = MAX(count - 1, 0), updated_at = ?
WHERE member_id = ? AND kind = ?`, now, target.MemberID, string(target.Kind)); err != nil {
			return fmt.Errorf("failed to decrement fairness count: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO fairness_counts (member_id, kind, count, window_start, window_end, updated_at)
VALUES (?, ?, 1, ?, ?, ?)
ON CONFLICT(member_id, kind) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at`,
		toMemberID, string(target.Kind), windowStart, windowEnd, now); err != nil {
		return fmt.Errorf("failed to increment fairness count: %w", err)
	}
	return nil
}

// SaveFairnessCounts replaces the persisted ledger snapshot, used by the
// recompute maintenance command.
func (s *Store) SaveFairnessCounts(ctx context.Context, counts []roster.FairnessCount) error {
	now := formatTime(time.Now())
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return replaceFairnessCounts(ctx, tx, counts, now)
	})
}

// FairnessCounts returns the persisted ledger snapshot.
func (s *Store) FairnessCounts(ctx context.Context) ([]roster.FairnessCount, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT member_id, kind, count, window_start, window_end
FROM fairness_counts ORDER BY member_id, kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fairness counts: %w", err)
	}
	defer rows.Close()

	var counts []roster.FairnessCount
	for rows.Next() {
		var c roster.FairnessCount
		var kind, start, end string
		if err := rows.Scan(&c.MemberID, &kind, &c.Count, &start, &end); err != nil {
			return nil, err
		}
		c.Kind = roster.TaskKind(kind)
		if c.WindowStart, err = parseDay(start); err != nil {
			return nil, err
		}
		if c.WindowEnd, err = parseDay(end); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// AuditEntries returns the audit log of one schedule in insertion order.
func (s *Store) AuditEntries(ctx context.Context, scheduleID string) ([]audit.Entry, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT schedule_id, action, date, week_start, kind, shift_label, member_id, candidates, reason, warnings, created_at
FROM audit_entries WHERE schedule_id = ? ORDER BY id`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		var action, day, kind, candidates, reason, warnings, createdAt string
		var weekStart sql.NullString
		if err := rows.Scan(&e.ScheduleID, &action, &day, &weekStart, &kind, &e.ShiftLabel,
			&e.MemberID, &candidates, &reason, &warnings, &createdAt); err != nil {
			return nil, err
		}
		e.Action = audit.Action(action)
		if e.Date, err = parseDay(day); err != nil {
			return nil, err
		}
		if weekStart.Valid {
			ws, err := parseDay(weekStart.String)
			if err != nil {
				return nil, err
			}
			e.WeekStart = &ws
		}
		e.Kind = roster.TaskKind(kind)
		e.Reason = fairness.DecisionReason(reason)
		if err := json.Unmarshal([]byte(candidates), &e.Candidates); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidates: %w", err)
		}
		if err := json.Unmarshal([]byte(warnings), &e.Warnings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CreateSwapRequest persists a new swap proposal and fills in its ID.
func (s *Store) CreateSwapRequest(ctx context.Context, req *swap.Request) error {
	var appliedAt any
	if req.AppliedAt != nil {
		appliedAt = formatTime(*req.AppliedAt)
	}
	res, err := s.db.Conn().ExecContext(ctx, `
INSERT INTO swap_requests (assignment_id, requested_by, to_member_id, note, peer_decision, admin_decision, status, applied_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.AssignmentID, req.RequestedBy, req.ToMemberID, req.Note,
		string(req.PeerDecision), string(req.AdminDecision), string(req.Status),
		appliedAt, formatTime(req.CreatedAt), formatTime(req.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create swap request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = id
	return nil
}

// UpdateSwapRequest stores the decisions and status of an existing request.
func (s *Store) UpdateSwapRequest(ctx context.Context, req *swap.Request) error {
	var appliedAt any
	if req.AppliedAt != nil {
		appliedAt = formatTime(*req.AppliedAt)
	}
	res, err := s.db.Conn().ExecContext(ctx, `
UPDATE swap_requests
SET peer_decision = ?, admin_decision = ?, status = ?, applied_at = ?, updated_at = ?
WHERE id = ?`,
		string(req.PeerDecision), string(req.AdminDecision), string(req.Status),
		appliedAt, formatTime(time.Now()), req.ID)
	if err != nil {
		return fmt.Errorf("failed to update swap request %d: %w", req.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("swap request %d not found", req.ID)
	}
	return nil
}

// SwapRequestByID returns one swap request.
func (s *Store) SwapRequestByID(ctx context.Context, id int64) (*swap.Request, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
SELECT id, assignment_id, requested_by, to_member_id, note, peer_decision, admin_decision, status, applied_at, created_at, updated_at
FROM swap_requests WHERE id = ?`, id)
	req, err := scanSwapRequest(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("swap request %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load swap request %d: %w", id, err)
	}
	return req, nil
}

// SwapRequests returns all swap requests, newest first.
func (s *Store) SwapRequests(ctx context.Context) ([]*swap.Request, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
SELECT id, assignment_id, requested_by, to_member_id, note, peer_decision, admin_decision, status, applied_at, created_at, updated_at
FROM swap_requests ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query swap requests: %w", err)
	}
	defer rows.Close()

	var requests []*swap.Request
	for rows.Next() {
		req, err := scanSwapRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func scanSwapRequest(row rowScanner) (*swap.Request, error) {
	var req swap.Request
	var peer, admin, status, createdAt, updatedAt string
	var appliedAt sql.NullString
	if err := row.Scan(&req.ID, &req.AssignmentID, &req.RequestedBy, &req.ToMemberID, &req.Note,
		&peer, &admin, &status, &appliedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	req.PeerDecision = swap.Decision(peer)
	req.AdminDecision = swap.Decision(admin)
	req.Status = swap.Status(status)
	if appliedAt.Valid {
		at := parseTime(appliedAt.String)
		req.AppliedAt = &at
	}
	req.CreatedAt = parseTime(createdAt)
	req.UpdatedAt = parseTime(updatedAt)
	return &req, nil
}
