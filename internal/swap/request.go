// Package swap implements the reassignment workflow: a proposed swap must be
// approved by the receiving peer and by an admin before it is validated
// against the scheduling constraints and applied.
package swap

import (
	"fmt"
	"time"
)

// Decision is one vote on a swap request. The peer's acceptance and the
// admin's approval deliberately share one value set; DecisionApproved covers
// both.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Valid reports whether the decision is one of the known values.
func (d Decision) Valid() bool {
	switch d {
	case DecisionPending, DecisionApproved, DecisionRejected:
		return true
	}
	return false
}

// Status is the derived lifecycle state of a swap request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusApplied  Status = "applied"
)

// Request is a proposal to move one assignment to another member. Weekly
// assignments move as a whole week.
type Request struct {
	ID            int64
	AssignmentID  int64
	RequestedBy   string
	ToMemberID    string
	Note          string
	PeerDecision  Decision
	AdminDecision Decision
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AppliedAt     *time.Time
}

// NewRequest creates a pending swap proposal.
func NewRequest(assignmentID int64, requestedBy, toMemberID, note string) *Request {
	now := time.Now()
	return &Request{
		AssignmentID:  assignmentID,
		RequestedBy:   requestedBy,
		ToMemberID:    toMemberID,
		Note:          note,
		PeerDecision:  DecisionPending,
		AdminDecision: DecisionPending,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RecordPeerDecision stores the receiving member's vote.
func (r *Request) RecordPeerDecision(d Decision) error {
	return r.record(&r.PeerDecision, d)
}

// RecordAdminDecision stores the admin's vote.
func (r *Request) RecordAdminDecision(d Decision) error {
	return r.record(&r.AdminDecision, d)
}

func (r *Request) record(target *Decision, d Decision) error {
	if !d.Valid() || d == DecisionPending {
		return fmt.Errorf("invalid decision %q", d)
	}
	if r.Status != StatusPending {
		return fmt.Errorf("swap request is %s, decisions are closed", r.Status)
	}
	*target = d
	r.UpdatedAt = time.Now()
	r.deriveStatus()
	return nil
}

// deriveStatus folds the two votes into the request status: any rejection
// rejects, both approvals approve, anything else stays pending.
func (r *Request) deriveStatus() {
	switch {
	case r.PeerDecision == DecisionRejected || r.AdminDecision == DecisionRejected:
		r.Status = StatusRejected
	case r.PeerDecision == DecisionApproved && r.AdminDecision == DecisionApproved:
		r.Status = StatusApproved
	default:
		r.Status = StatusPending
	}
}

// MarkApplied transitions an approved request to applied.
func (r *Request) MarkApplied(at time.Time) error {
	if r.Status != StatusApproved {
		return fmt.Errorf("cannot apply a %s swap request", r.Status)
	}
	r.Status = StatusApplied
	r.AppliedAt = &at
	r.UpdatedAt = at
	return nil
}
