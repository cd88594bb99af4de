package form

import (
	"fmt"
	"slices"
)

// Step is a 1-based position in the form.
type Step int

const (
	StepPersonal Step = iota + 1
	StepSubjects
	StepMarks
	StepReview
)

// StepCount is the number of steps in the form.
const StepCount = 4

// FirstStep and LastStep bound the step range.
const (
	FirstStep = StepPersonal
	LastStep  = StepReview
)

// Label returns the label shown in the step indicator.
func (s Step) Label() string {
	switch s {
	case StepPersonal:
		return "Personal Info"
	case StepSubjects:
		return "Subjects"
	case StepMarks:
		return "Marks"
	case StepReview:
		return "Review & Payment"
	default:
		return ""
	}
}

// Valid reports whether s is inside the step range.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// StepLabels returns the labels of all steps in order.
func StepLabels() []string {
	labels := make([]string, 0, StepCount)
	for s := FirstStep; s <= LastStep; s++ {
		labels = append(labels, s.Label())
	}
	return labels
}

// gateOptions carries the switches that change what a gate demands.
type gateOptions struct {
	requireAssessment bool
}

// Names reported by Missing for values that are not personal fields.
const (
	MissingSubjects   = "selectedSubjects"
	MissingPayment    = "paymentDate"
	MissingAssessment = "assessmentSubject"
)

// gate lists what still keeps the student from leaving a step going
// forward. An empty list opens the gate.
type gate func(st FormState, opts gateOptions) []string

var gates = map[Step]gate{
	StepPersonal: personalMissing,
	StepSubjects: subjectsMissing,
	StepMarks:    marksMissing,
	StepReview:   paymentMissing,
}

func personalMissing(st FormState, _ gateOptions) []string {
	var out []string
	for _, f := range PersonalFields {
		if f.Required() && st.Personal.Get(f) == "" {
			out = append(out, string(f))
		}
	}
	return out
}

func subjectsMissing(st FormState, _ gateOptions) []string {
	if len(st.Subjects) == 0 {
		return []string{MissingSubjects}
	}
	return nil
}

// marksMissing reports "marks.<subject>.<field>" for each absent mark of a
// selected subject.
func marksMissing(st FormState, _ gateOptions) []string {
	var out []string
	for _, id := range st.Subjects {
		var m Marks
		if p := st.Marks[id]; p != nil {
			m = *p
		}
		for _, f := range []MarkField{MarkCurrent, MarkTarget} {
			if m.Get(f) == "" {
				out = append(out, fmt.Sprintf("marks.%s.%s", id, f))
			}
		}
	}
	return out
}

func paymentMissing(st FormState, opts gateOptions) []string {
	var out []string
	if st.PaymentDate == "" {
		out = append(out, MissingPayment)
	}
	if opts.requireAssessment && len(st.Subjects) > 0 && !slices.Contains(st.Subjects, st.AssessmentSubject) {
		out = append(out, MissingAssessment)
	}
	return out
}

// stepMissing evaluates the gate for step against st. Steps outside the
// range report themselves as missing so they are never valid.
func stepMissing(st FormState, step Step, opts gateOptions) []string {
	g, ok := gates[step]
	if !ok {
		return []string{fmt.Sprintf("step %d", step)}
	}
	return g(st, opts)
}

func stepValid(st FormState, step Step, opts gateOptions) bool {
	return len(stepMissing(st, step, opts)) == 0
}
