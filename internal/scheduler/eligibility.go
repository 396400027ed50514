package scheduler

import (
	"time"

	"github.com/opsdesk/duty-roster/internal/availability"
	"github.com/opsdesk/duty-roster/internal/config"
	"github.com/opsdesk/duty-roster/internal/roster"
)

// eligibleForATM filters members down to those who may take the given ATM
// shift kind on date: active, available, not resting, not in cooldown (for
// Mid/Night), and not already on ATM duty that day.
func eligibleForATM(
	members []roster.Member,
	date time.Time,
	kind roster.TaskKind,
	cfg config.SchedulingConfig,
	view *availability.View,
	state *RestState,
	assignedToday map[string]bool,
) []roster.Member {
	var eligible []roster.Member
	for _, m := range members {
		if !m.Active {
			continue
		}
		if !view.IsAvailable(m.ID, date) {
			continue
		}
		if state.IsResting(m.ID, date) {
			continue
		}
		if kind == roster.TaskATMMidnight && state.InCooldown(m.ID, date, cfg.ATMBCooldownDays) {
			continue
		}
		if assignedToday[m.ID] {
			continue
		}
		eligible = append(eligible, m)
	}
	return eligible
}

// eligibleForSysAid filters members down to those who can hold a weekly
// SysAid role: active, office pattern covering the required days, available
// across the whole week span, and no ATM rest day inside it.
func eligibleForSysAid(
	members []roster.Member,
	weekStart, weekEnd time.Time,
	cfg config.SchedulingConfig,
	view *availability.View,
	state *RestState,
) []roster.Member {
	required := cfg.RequiredOfficeDays()

	var eligible []roster.Member
	for _, m := range members {
		if !m.Active {
			continue
		}
		if !m.HasOfficeDays(required) {
			continue
		}
		if !view.IsAvailableAll(m.ID, weekStart, weekEnd) {
			continue
		}
		if state.RestsInRange(m.ID, weekStart, weekEnd) {
			continue
		}
		eligible = append(eligible, m)
	}
	return eligible
}

// withoutMember returns candidates minus the given member, used to enforce
// maker/checker distinctness.
func withoutMember(candidates []roster.Member, memberID string) []roster.Member {
	out := make([]roster.Member, 0, len(candidates))
	for _, m := range candidates {
		if m.ID != memberID {
			out = append(out, m)
		}
	}
	return out
}
