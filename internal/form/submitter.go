package form

import (
	"context"
	"time"
)

// Submission is what the form hands to its collaborator: the complete state
// plus the review computed from it at submit time.
type Submission struct {
	ID          string    `json:"id"`
	State       FormState `json:"state"`
	Review      Review    `json:"review"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Ack is a collaborator's acknowledgement of a submission.
type Ack struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	Location    string    `json:"location,omitempty"` // where the submission ended up, if anywhere
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submitter receives completed forms. Implementations own transport,
// persistence and error reporting.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (Ack, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, sub Submission) (Ack, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, sub Submission) (Ack, error) {
	return f(ctx, sub)
}
