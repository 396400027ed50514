package roster

// TaskKind identifies one of the four canonical duty streams.
type TaskKind string

const (
	// TaskATMMorning is the morning ATM reporter slot (A-shift)
	TaskATMMorning TaskKind = "ATM_MORNING"
	// TaskATMMidnight is the mid-day/night ATM reporter slot (B-shift); it
	// triggers the rest rule and the cooldown
	TaskATMMidnight TaskKind = "ATM_MIDNIGHT"
	// TaskSysAidMaker is the weekly SysAid maker role
	TaskSysAidMaker TaskKind = "SYSAID_MAKER"
	// TaskSysAidChecker is the weekly SysAid checker role
	TaskSysAidChecker TaskKind = "SYSAID_CHECKER"
)

// Recurrence describes how often a task kind is assigned.
type Recurrence int

const (
	RecurrenceDaily Recurrence = iota
	RecurrenceWeekly
)

// kindInfo drives per-kind behavior from a table instead of scattered
// kind comparisons.
type kindInfo struct {
	recurrence Recurrence
	order      int
}

var kindTable = map[TaskKind]kindInfo{
	TaskATMMorning:    {recurrence: RecurrenceDaily, order: 0},
	TaskATMMidnight:   {recurrence: RecurrenceDaily, order: 1},
	TaskSysAidMaker:   {recurrence: RecurrenceWeekly, order: 2},
	TaskSysAidChecker: {recurrence: RecurrenceWeekly, order: 3},
}

// AllTaskKinds lists the canonical kinds in export order.
func AllTaskKinds() []TaskKind {
	return []TaskKind{TaskATMMorning, TaskATMMidnight, TaskSysAidMaker, TaskSysAidChecker}
}

// Valid reports whether k is one of the canonical kinds.
func (k TaskKind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// Recurrence returns how often the kind is assigned.
func (k TaskKind) Recurrence() Recurrence {
	return kindTable[k].recurrence
}

// CanonicalOrder returns the kind's position in the stable export ordering
// (ATM_MORNING < ATM_MIDNIGHT < SYSAID_MAKER < SYSAID_CHECKER).
func (k TaskKind) CanonicalOrder() int {
	info, ok := kindTable[k]
	if !ok {
		return len(kindTable)
	}
	return info.order
}

// IsATM reports whether the kind belongs to the daily ATM stream.
func (k TaskKind) IsATM() bool {
	return k.Recurrence() == RecurrenceDaily
}

// String returns the wire name of the kind.
func (k TaskKind) String() string {
	return string(k)
}
