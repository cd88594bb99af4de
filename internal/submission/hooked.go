package submission

import (
	"context"
	"encoding/json"

	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/hooks"
	"github.com/studentconnect/intake/internal/logger"
)

// Hooked runs post-submit hooks after Next accepts a submission. Hook
// failures are logged and never turn an accepted submission into an error.
type Hooked struct {
	Next    form.Submitter
	Hooks   []*hooks.HookConfig
	WorkDir string
}

// Submit forwards to Next, then runs the hooks with the submission JSON on
// stdin.
func (h Hooked) Submit(ctx context.Context, sub form.Submission) (form.Ack, error) {
	ack, err := h.Next.Submit(ctx, sub)
	if err != nil || len(h.Hooks) == 0 {
		return ack, err
	}

	payload, err := json.Marshal(sub)
	if err != nil {
		logger.Warn("Skipping post-submit hooks: %v", err)
		return ack, nil
	}

	vars := hooks.Variables{
		ID:          ack.ID,
		Reference:   ack.Reference,
		Location:    ack.Location,
		PaymentDate: sub.State.PaymentDate,
	}
	out, err := hooks.ExecuteAll(ctx, h.Hooks, h.WorkDir, vars, payload)
	if err != nil {
		logger.Warn("Post-submit hooks interrupted: %v", err)
		return ack, nil
	}
	if out != "" {
		logger.Info("Post-submit hook output:\n%s", out)
	}
	return ack, nil
}
