package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding intake submissions.
	StreamName = "intake_submissions"

	subjectPrefix = "intake.submissions"
)

// SubjectForSubmission returns the subject a submission is published on.
// The reference is slugged because NATS subject tokens cannot contain
// spaces or dots.
// Example: "Jane Doe" -> "intake.submissions.jane-doe"
func SubjectForSubmission(reference string) string {
	token := slug.Make(reference)
	if token == "" {
		token = "anonymous"
	}
	return fmt.Sprintf("%s.%s", subjectPrefix, token)
}

// AllSubmissions is the wildcard subject matching every submission.
func AllSubmissions() string {
	return subjectPrefix + ".>"
}

// SetupStream creates or updates the submissions stream with one-year
// retention on file storage.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{AllSubmissions()},
		Storage:  jetstream.FileStorage,
		MaxAge:   365 * 24 * time.Hour,
	})
}
