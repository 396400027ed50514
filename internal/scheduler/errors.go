package scheduler

import "errors"

// ErrGenerationInProgress is returned when a second generation for the same
// team starts while one is in flight. Retryable.
var ErrGenerationInProgress = errors.New("a schedule generation is already in progress for this team")

// InputError reports invalid generation input. It always surfaces before any
// write happens.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}
