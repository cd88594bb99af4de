package form

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned for field names the form does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrNotFinalStep is returned by Submit before the review step.
	ErrNotFinalStep = errors.New("form can only be submitted from the review step")
	// ErrStepIncomplete is returned by Submit when the review gate fails.
	ErrStepIncomplete = errors.New("review step is incomplete")
	// ErrNoSubmitter is returned by Submit when no collaborator is attached.
	ErrNoSubmitter = errors.New("no submitter configured")
	// ErrInvalidDate is returned for payment dates that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("payment date must be YYYY-MM-DD")
	// ErrPastDate is returned for payment dates before today.
	ErrPastDate = errors.New("payment date cannot be in the past")
)

// SubmissionError wraps a failure reported by the submission collaborator.
type SubmissionError struct {
	Reference string
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submitting intake for %q: %v", e.Reference, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
