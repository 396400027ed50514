package swap

import "fmt"

// Constraint names for violation errors.
const (
	ConstraintUnavailability       = "unavailability"
	ConstraintOfficeDay            = "office-day"
	ConstraintRestRule             = "rest-rule"
	ConstraintCooldown             = "cooldown"
	ConstraintSameDay              = "same-day-distinctness"
	ConstraintMakerCheckerDistinct = "maker-checker-distinctness"
)

// ConstraintViolationError reports which scheduling rule a proposed
// reassignment would break.
type ConstraintViolationError struct {
	Constraint string
	Detail     string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("swap violates %s: %s", e.Constraint, e.Detail)
}

func violation(constraint, format string, args ...any) error {
	return &ConstraintViolationError{Constraint: constraint, Detail: fmt.Sprintf(format, args...)}
}
