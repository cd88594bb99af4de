package form

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studentconnect/intake/internal/catalog"
	"github.com/studentconnect/intake/internal/logger"
)

// Controller owns one intake session: its FormState, the step transitions
// and the mutations. It is not safe for concurrent use.
type Controller struct {
	state     FormState
	catalog   *catalog.Catalog
	pricing   catalog.Pricing
	submitter Submitter
	opts      gateOptions
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithSubmitter attaches the submission collaborator.
func WithSubmitter(s Submitter) Option {
	return func(c *Controller) { c.submitter = s }
}

// WithPricing overrides the default pricing.
func WithPricing(p catalog.Pricing) Option {
	return func(c *Controller) { c.pricing = p }
}

// WithClock overrides the clock used for payment-date checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithRequiredAssessment makes the review gate demand an assessment subject
// whenever subjects are selected.
func WithRequiredAssessment(required bool) Option {
	return func(c *Controller) { c.opts.requireAssessment = required }
}

// WithState seeds the controller with an existing state. Out-of-range steps
// are clamped.
func WithState(st FormState) Option {
	return func(c *Controller) {
		c.state = st.Clone()
		switch {
		case c.state.Step < FirstStep:
			c.state.Step = FirstStep
		case c.state.Step > LastStep:
			c.state.Step = LastStep
		}
	}
}

// NewController creates a controller at step 1 with an empty form.
func NewController(cat *catalog.Catalog, opts ...Option) *Controller {
	if cat == nil {
		cat = catalog.Default()
	}
	c := &Controller{
		state:   NewFormState(),
		catalog: cat,
		pricing: catalog.DefaultPricing(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() FormState {
	return c.state.Clone()
}

// Step returns the current step.
func (c *Controller) Step() Step {
	return c.state.Step
}

// Catalog returns the subject catalog.
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// Pricing returns the pricing in effect.
func (c *Controller) Pricing() catalog.Pricing {
	return c.pricing
}

// AssessmentRequired reports whether the review gate demands an assessment
// subject.
func (c *Controller) AssessmentRequired() bool {
	return c.opts.requireAssessment
}

// Steps returns the step labels in order.
func (c *Controller) Steps() []string {
	return StepLabels()
}

// IsStepValid reports whether the gate for step currently holds.
func (c *Controller) IsStepValid(step Step) bool {
	return stepValid(c.state, step, c.opts)
}

// Missing lists what keeps step's gate closed: required personal field
// names, "selectedSubjects", "marks.<subject>.<field>", "paymentDate" or
// "assessmentSubject". Empty when the step is valid.
func (c *Controller) Missing(step Step) []string {
	return stepMissing(c.state, step, c.opts)
}

// CanAdvance reports whether Advance would move forward.
func (c *Controller) CanAdvance() bool {
	return c.state.Step < LastStep && c.IsStepValid(c.state.Step)
}

// CanRetreat reports whether Retreat would move back.
func (c *Controller) CanRetreat() bool {
	return c.state.Step > FirstStep
}

// CanSubmit reports whether Submit would reach the collaborator.
func (c *Controller) CanSubmit() bool {
	return c.state.Step == LastStep && c.IsStepValid(LastStep)
}

// Advance moves to the next step if the current step's gate holds.
// Returns false when nothing changed.
func (c *Controller) Advance() bool {
	if !c.CanAdvance() {
		logger.Debug("Advance blocked at step %d", c.state.Step)
		return false
	}
	c.state = c.state.WithStep(c.state.Step + 1)
	logger.Debug("Advanced to step %d", c.state.Step)
	return true
}

// Retreat moves to the previous step. Entered data is kept.
// Returns false at the first step.
func (c *Controller) Retreat() bool {
	if !c.CanRetreat() {
		return false
	}
	c.state = c.state.WithStep(c.state.Step - 1)
	logger.Debug("Retreated to step %d", c.state.Step)
	return true
}

// Submit hands the form to the submitter. It only does so from the last step
// with its gate satisfied; the controller stays on the last step afterwards.
func (c *Controller) Submit(ctx context.Context) (Ack, error) {
	if c.state.Step != LastStep {
		return Ack{}, ErrNotFinalStep
	}
	if !c.IsStepValid(LastStep) {
		return Ack{}, ErrStepIncomplete
	}
	if c.submitter == nil {
		return Ack{}, ErrNoSubmitter
	}

	sub := Submission{
		ID:          uuid.NewString(),
		State:       c.State(),
		Review:      c.Review(),
		SubmittedAt: c.now(),
	}

	logger.Info("Submitting intake for %s (%d subjects)", sub.Review.PaymentReference, len(sub.State.Subjects))
	ack, err := c.submitter.Submit(ctx, sub)
	if err != nil {
		logger.Error("Submission failed for %s: %v", sub.Review.PaymentReference, err)
		return Ack{}, &SubmissionError{Reference: sub.Review.PaymentReference, Err: err}
	}
	logger.Info("Submission acknowledged: id=%s", ack.ID)
	return ack, nil
}

// SetField replaces one personal-information field.
func (c *Controller) SetField(f Field, value string) error {
	next, err := c.state.WithField(f, value)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// ToggleSubject selects or deselects a catalog subject. IDs that are not in
// the catalog are ignored and false is returned.
func (c *Controller) ToggleSubject(id string) bool {
	if !c.catalog.Has(id) {
		logger.Warn("Ignoring toggle of unknown subject %q", id)
		return false
	}
	c.state = c.state.WithSubjectToggled(id)
	return true
}

// SetMark replaces one side of a subject's marks. Subjects that are not
// selected may still carry marks; their entry is simply not gated.
func (c *Controller) SetMark(id string, f MarkField, value string) error {
	next, err := c.state.WithMark(id, f, value)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// SetPaymentDate sets the payment date. An empty value clears it; anything
// else must be an ISO date no earlier than today.
func (c *Controller) SetPaymentDate(date string) error {
	if date != "" {
		if err := ValidatePaymentDate(date, c.now()); err != nil {
			return err
		}
	}
	c.state = c.state.WithPaymentDate(date)
	return nil
}

// SetAssessmentSubject records the subject chosen for the entry assessment.
func (c *Controller) SetAssessmentSubject(id string) {
	c.state = c.state.WithAssessmentSubject(id)
}

// Review derives the review values from the current state.
func (c *Controller) Review() Review {
	return Derive(c.state, c.catalog, c.pricing)
}

// ValidatePaymentDate checks that date is YYYY-MM-DD and not before the
// calendar day of now.
func ValidatePaymentDate(date string, now time.Time) error {
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return ErrInvalidDate
	}
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return ErrPastDate
	}
	return nil
}
