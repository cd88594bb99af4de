// Package submission contains the collaborators that receive completed
// intake forms: a JetStream-backed store, a receipt writer, a logger, and a
// fan-out over several of them.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/logger"
	"github.com/studentconnect/intake/internal/nats"
)

// Record is a stored submission together with its stream position.
type Record struct {
	Sequence   uint64          `json:"sequence"`
	Submission form.Submission `json:"submission"`
}

// Store persists submissions in the JetStream submissions stream.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a Store on the given JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{
		js:     js,
		stream: stream,
	}
}

// Submit publishes the submission and acknowledges with its stream sequence.
func (s *Store) Submit(ctx context.Context, sub form.Submission) (form.Ack, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return form.Ack{}, fmt.Errorf("failed to marshal submission: %w", err)
	}

	subject := nats.SubjectForSubmission(sub.Review.PaymentReference)
	logger.Debug("Publishing submission %s to %s", sub.ID, subject)

	// Msg ID lets JetStream drop a retried publish of the same submission
	ack, err := s.js.Publish(ctx, subject, data, jetstream.WithMsgID(sub.ID))
	if err != nil {
		logger.Error("Failed to publish submission to subject %s: %v", subject, err)
		return form.Ack{}, fmt.Errorf("failed to publish submission: %w", err)
	}

	logger.Debug("Submission stored: seq=%d", ack.Sequence)
	return form.Ack{
		ID:          sub.ID,
		Reference:   sub.Review.PaymentReference,
		Location:    fmt.Sprintf("%s#%d", ack.Stream, ack.Sequence),
		SubmittedAt: sub.SubmittedAt,
	}, nil
}

// List reads every stored submission in stream order. Malformed messages are
// skipped with a warning.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.AllSubmissions(),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	const batchSize = 500
	var records []Record
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			meta, err := msg.Metadata()
			if err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}

			var sub form.Submission
			if err := json.Unmarshal(msg.Data(), &sub); err != nil {
				malformed++
				logger.Warn("Skipping malformed submission (seq=%d): %v", meta.Sequence.Stream, err)
				_ = msg.Ack()
				continue
			}
			records = append(records, Record{Sequence: meta.Sequence.Stream, Submission: sub})
			_ = msg.Ack()
		}
		if err := msgs.Error(); err != nil {
			logger.Debug("Fetch ended: %v", err)
		}

		if count < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed submissions", malformed)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Sequence < records[j].Sequence })
	return records, nil
}
