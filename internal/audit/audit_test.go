package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/duty-roster/internal/fairness"
	"github.com/opsdesk/duty-roster/internal/roster"
)

func TestRecordAndWarnings(t *testing.T) {
	log := NewLog()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	log.Record(Entry{
		Date:       day,
		Kind:       roster.TaskATMMorning,
		ShiftLabel: "Morning",
		MemberID:   "alice",
		Reason:     fairness.DecisionReasonLowestPrimary,
		Candidates: []fairness.RankedCandidate{
			{MemberID: "alice", Key: fairness.RankKey{Primary: 0, Secondary: 0, TieBreak: 42}},
			{MemberID: "bob", Key: fairness.RankKey{Primary: 1, Secondary: 1, TieBreak: 7}},
		},
	})
	log.Warn(Entry{Date: day, Kind: roster.TaskATMMidnight, ShiftLabel: "Mid/Night"},
		"insufficient eligible members")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, ActionSelect, entries[0].Action)
	assert.Equal(t, "alice", entries[0].MemberID)
	assert.Empty(t, entries[1].MemberID)

	warnings := log.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "insufficient eligible members", warnings[0])

	// All entries of one log share the same timestamp
	assert.Equal(t, entries[0].CreatedAt, entries[1].CreatedAt)
}

func TestRender(t *testing.T) {
	log := NewLog()
	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	week := day

	log.Record(Entry{
		Date:       day,
		WeekStart:  &week,
		Kind:       roster.TaskSysAidMaker,
		ShiftLabel: "Week",
		MemberID:   "carol",
		Reason:     fairness.DecisionReasonLowestHash,
		Candidates: []fairness.RankedCandidate{{MemberID: "carol"}},
	})

	text := log.Render()
	assert.Contains(t, text, "week 2025-01-06")
	assert.Contains(t, text, "chose carol")
	assert.Contains(t, text, "tied on primary+total, lowest hash")
	assert.Contains(t, text, "candidate carol")
}
