package fairness

// DecisionReason explains why the selector chose the head of the ranked
// candidate list. It is recorded verbatim in the audit log.
type DecisionReason string

const (
	// DecisionReasonLowestPrimary means the chosen member had strictly the
	// fewest assignments of the target kind
	DecisionReasonLowestPrimary DecisionReason = "lowest primary"
	// DecisionReasonLowestTotal means the kind counts tied and the chosen
	// member had the lowest scaled total
	DecisionReasonLowestTotal DecisionReason = "tied on primary, lowest total"
	// DecisionReasonLowestHash means primary and total both tied and the
	// seeded hash decided
	DecisionReasonLowestHash DecisionReason = "tied on primary+total, lowest hash"
)

// String returns the string representation of the DecisionReason
func (d DecisionReason) String() string {
	return string(d)
}
