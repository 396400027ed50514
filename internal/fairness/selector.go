package fairness

import (
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/opsdesk/duty-roster/internal/logging"
	"github.com/opsdesk/duty-roster/internal/roster"
)

// ErrNoCandidates is returned when Select is called with an empty set.
var ErrNoCandidates = errors.New("no eligible candidates")

// RankedCandidate is one considered member with its computed rank key.
type RankedCandidate struct {
	MemberID string
	Key      RankKey
}

// Selection is the outcome of one selector run: the chosen member, every
// candidate considered with its rank key, and the tie-break reason.
type Selection struct {
	MemberID string
	Ranked   []RankedCandidate
	Reason   DecisionReason
}

// Selector picks assignees from candidate sets using fairness ordering with a
// deterministic seeded tie-break.
type Selector struct {
	ledger         *Ledger
	seed           int64
	aggressiveness int
	logger         zerolog.Logger
}

// NewSelector creates a selector over the given ledger. Aggressiveness (1..5)
// scales how strongly a member's total load demotes them on primary ties.
func NewSelector(ledger *Ledger, seed int64, aggressiveness int) *Selector {
	if aggressiveness < 1 {
		aggressiveness = 1
	}
	return &Selector{
		ledger:         ledger,
		seed:           seed,
		aggressiveness: aggressiveness,
		logger:         logging.GetLogger("selector"),
	}
}

// Select ranks the candidates for (kind, key) and returns the head. The key
// is the ISO date for daily kinds and the ISO week start for weekly kinds.
func (s *Selector) Select(candidates []roster.Member, kind roster.TaskKind, key string) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, ErrNoCandidates
	}

	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, m := range candidates {
		ranked = append(ranked, RankedCandidate{
			MemberID: m.ID,
			Key: RankKey{
				Primary:   s.ledger.Count(m.ID, kind),
				Secondary: s.ledger.Total(m.ID) * s.aggressiveness,
				TieBreak:  TieHash(m.ID, key, kind, s.seed),
			},
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Key != ranked[j].Key {
			return ranked[i].Key.Less(ranked[j].Key)
		}
		// Full 64-bit hash collisions are effectively impossible, but the
		// order must still be total for determinism
		return ranked[i].MemberID < ranked[j].MemberID
	})

	head := ranked[0]
	reason := s.reasonFor(head, ranked)

	s.logger.Debug().
		Str("kind", string(kind)).
		Str("key", key).
		Str("chosen", head.MemberID).
		Int("candidates", len(ranked)).
		Str("reason", string(reason)).
		Msg("Selected assignee")

	return Selection{MemberID: head.MemberID, Ranked: ranked, Reason: reason}, nil
}

// reasonFor derives the verbal tie-break reason for the chosen head.
func (s *Selector) reasonFor(head RankedCandidate, ranked []RankedCandidate) DecisionReason {
	primaryTies, secondaryTies := 0, 0
	for _, c := range ranked {
		if c.Key.Primary == head.Key.Primary {
			primaryTies++
			if c.Key.Secondary == head.Key.Secondary {
				secondaryTies++
			}
		}
	}
	switch {
	case primaryTies == 1:
		return DecisionReasonLowestPrimary
	case secondaryTies == 1:
		return DecisionReasonLowestTotal
	default:
		return DecisionReasonLowestHash
	}
}
