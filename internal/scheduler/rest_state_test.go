package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRestStateMarkAndQuery(t *testing.T) {
	state := NewRestState()

	state.MarkRest("alice", date(2025, time.January, 7))

	assert.True(t, state.IsResting("alice", date(2025, time.January, 7)))
	assert.False(t, state.IsResting("alice", date(2025, time.January, 8)))
	assert.False(t, state.IsResting("bob", date(2025, time.January, 7)))
}

func TestRestStateRestsInRange(t *testing.T) {
	state := NewRestState()
	state.MarkRest("alice", date(2025, time.January, 9))

	assert.True(t, state.RestsInRange("alice", date(2025, time.January, 6), date(2025, time.January, 11)))
	assert.True(t, state.RestsInRange("alice", date(2025, time.January, 9), date(2025, time.January, 9)))
	assert.False(t, state.RestsInRange("alice", date(2025, time.January, 10), date(2025, time.January, 11)))
	assert.False(t, state.RestsInRange("bob", date(2025, time.January, 6), date(2025, time.January, 11)))
}

func TestRestStateRecordMidnightKeepsLatest(t *testing.T) {
	state := NewRestState()

	state.RecordMidnight("alice", date(2025, time.January, 10))
	state.RecordMidnight("alice", date(2025, time.January, 6))

	last, ok := state.LastMidnight("alice")
	assert.True(t, ok)
	assert.Equal(t, date(2025, time.January, 10), last)

	_, ok = state.LastMidnight("bob")
	assert.False(t, ok)
}

func TestRestStateCooldown(t *testing.T) {
	state := NewRestState()
	state.RecordMidnight("alice", date(2025, time.January, 6))

	// Gap 1 and 2 are inside a 2-day cooldown, gap 3 is not
	assert.True(t, state.InCooldown("alice", date(2025, time.January, 7), 2))
	assert.True(t, state.InCooldown("alice", date(2025, time.January, 8), 2))
	assert.False(t, state.InCooldown("alice", date(2025, time.January, 9), 2))

	// The assignment day itself counts as gap zero
	assert.True(t, state.InCooldown("alice", date(2025, time.January, 6), 2))

	// Days before the last Mid/Night are not in cooldown
	assert.False(t, state.InCooldown("alice", date(2025, time.January, 5), 2))

	// No recorded Mid/Night means no cooldown
	assert.False(t, state.InCooldown("bob", date(2025, time.January, 7), 2))
}

func TestRestStateCooldownZeroDays(t *testing.T) {
	state := NewRestState()
	state.RecordMidnight("alice", date(2025, time.January, 6))

	assert.True(t, state.InCooldown("alice", date(2025, time.January, 6), 0))
	assert.False(t, state.InCooldown("alice", date(2025, time.January, 7), 0))
}
