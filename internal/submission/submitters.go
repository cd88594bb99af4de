package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/logger"
	"github.com/studentconnect/intake/internal/receipt"
)

// Log records submissions in the log and nowhere else.
type Log struct{}

// Submit logs the submission as JSON.
func (Log) Submit(_ context.Context, sub form.Submission) (form.Ack, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return form.Ack{}, fmt.Errorf("failed to marshal submission: %w", err)
	}
	logger.Info("Form submitted: %s", data)
	return form.Ack{
		ID:          sub.ID,
		Reference:   sub.Review.PaymentReference,
		SubmittedAt: sub.SubmittedAt,
	}, nil
}

// File writes a markdown receipt and the JSON payload for each submission
// into Dir. Files are named <date>-<reference slug>-<id prefix>.
type File struct {
	Dir     string
	Details receipt.Details
}

// Submit writes the receipt and payload files.
func (f File) Submit(_ context.Context, sub form.Submission) (form.Ack, error) {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return form.Ack{}, fmt.Errorf("failed to create receipts directory: %w", err)
	}

	base := f.baseName(sub)
	receiptPath := filepath.Join(f.Dir, base+".md")
	payloadPath := filepath.Join(f.Dir, base+".json")

	md := receipt.Markdown(sub.Review, f.Details)
	logger.Debug("Writing receipt to %s", receiptPath)
	if err := os.WriteFile(receiptPath, []byte(md), 0644); err != nil {
		return form.Ack{}, fmt.Errorf("failed to write receipt: %w", err)
	}

	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return form.Ack{}, fmt.Errorf("failed to marshal submission: %w", err)
	}
	if err := os.WriteFile(payloadPath, data, 0644); err != nil {
		return form.Ack{}, fmt.Errorf("failed to write submission payload: %w", err)
	}

	return form.Ack{
		ID:          sub.ID,
		Reference:   sub.Review.PaymentReference,
		Location:    receiptPath,
		SubmittedAt: sub.SubmittedAt,
	}, nil
}

func (f File) baseName(sub form.Submission) string {
	name := slug.Make(sub.Review.PaymentReference)
	if name == "" {
		name = "submission"
	}
	id := sub.ID
	if len(id) > 8 {
		id = id[:8]
	}
	parts := []string{sub.SubmittedAt.Format(form.DateLayout), name}
	if id != "" {
		parts = append(parts, id)
	}
	return strings.Join(parts, "-")
}

// Multi hands each submission to several submitters in order. The first
// failure stops the fan-out. The returned ack carries the first non-empty
// location reported.
type Multi []form.Submitter

// Submit calls every submitter in turn.
func (m Multi) Submit(ctx context.Context, sub form.Submission) (form.Ack, error) {
	if len(m) == 0 {
		return form.Ack{}, errors.New("no submitters configured")
	}

	var result form.Ack
	for i, s := range m {
		ack, err := s.Submit(ctx, sub)
		if err != nil {
			return form.Ack{}, fmt.Errorf("submitter %d: %w", i, err)
		}
		if i == 0 {
			result = ack
		}
		if result.Location == "" {
			result.Location = ack.Location
		}
	}
	return result, nil
}
