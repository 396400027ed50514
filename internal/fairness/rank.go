package fairness

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/opsdesk/duty-roster/internal/roster"
)

// RankKey orders candidates for a slot. Lower is better; comparison is
// lexicographic over (primary, secondary, tie break).
type RankKey struct {
	Primary   int    // ledger count for the target kind
	Secondary int    // total ledger count scaled by aggressiveness
	TieBreak  uint64 // deterministic seeded hash
}

// Less reports whether k ranks strictly before other.
func (k RankKey) Less(other RankKey) bool {
	if k.Primary != other.Primary {
		return k.Primary < other.Primary
	}
	if k.Secondary != other.Secondary {
		return k.Secondary < other.Secondary
	}
	return k.TieBreak < other.TieBreak
}

// TieHash computes the deterministic 64-bit tie-break hash for a candidate.
// The key is the ISO date for daily kinds and the ISO week-start date for
// weekly kinds; identical inputs always hash identically, which is what makes
// regeneration reproducible.
func TieHash(memberID, key string, kind roster.TaskKind, seed int64) uint64 {
	return xxhash.Sum64String(memberID + "|" + key + "|" + string(kind) + "|" + strconv.FormatInt(seed, 10))
}
