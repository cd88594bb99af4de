// Package form implements the intake form state machine: the form state,
// the step gates, the field mutations and the values derived for review.
//
// FormState is a value. Every mutation returns a new FormState that shares
// nothing mutable with the old one, so snapshots handed to renderers and
// submitters never change underneath them.
package form

import (
	"fmt"
	"slices"
)

// Field names a personal-information field.
type Field string

const (
	FieldFirstName       Field = "firstName"
	FieldLastName        Field = "lastName"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldSchool          Field = "school"
	FieldGuardianName    Field = "guardianName"
	FieldGuardianContact Field = "guardianContact"
)

// PersonalFields lists the personal-information fields in display order.
var PersonalFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldSchool,
	FieldGuardianName,
	FieldGuardianContact,
}

// Label returns the human-readable field label.
func (f Field) Label() string {
	switch f {
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldEmail:
		return "Email Address"
	case FieldPhone:
		return "Contact Number"
	case FieldSchool:
		return "School Name"
	case FieldGuardianName:
		return "Parent/Guardian Name"
	case FieldGuardianContact:
		return "Parent/Guardian Contact"
	default:
		return string(f)
	}
}

// Required reports whether the field must be filled before leaving step 1.
func (f Field) Required() bool {
	switch f {
	case FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldSchool:
		return true
	default:
		return false
	}
}

// ParseField converts a field name to a Field.
func ParseField(name string) (Field, error) {
	for _, f := range PersonalFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// MarkField names one side of a subject's marks.
type MarkField string

const (
	MarkCurrent MarkField = "currentMarks"
	MarkTarget  MarkField = "targetMarks"
)

// ParseMarkField converts a marks field name to a MarkField.
func ParseMarkField(name string) (MarkField, error) {
	switch MarkField(name) {
	case MarkCurrent, MarkTarget:
		return MarkField(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

// PersonalInfo holds the student's contact details.
type PersonalInfo struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	School          string `json:"school"`
	GuardianName    string `json:"guardianName"`
	GuardianContact string `json:"guardianContact"`
}

// Get returns the value of f.
func (p PersonalInfo) Get(f Field) string {
	switch f {
	case FieldFirstName:
		return p.FirstName
	case FieldLastName:
		return p.LastName
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	case FieldSchool:
		return p.School
	case FieldGuardianName:
		return p.GuardianName
	case FieldGuardianContact:
		return p.GuardianContact
	default:
		return ""
	}
}

// Marks are a subject's current and target marks as entered.
type Marks struct {
	Current string `json:"currentMarks"`
	Target  string `json:"targetMarks"`
}

// Get returns the value of f.
func (m Marks) Get(f MarkField) string {
	if f == MarkTarget {
		return m.Target
	}
	return m.Current
}

// Complete reports whether both sides have been entered.
func (m Marks) Complete() bool {
	return m.Current != "" && m.Target != ""
}

// FormState is everything the student has entered plus the current step.
type FormState struct {
	Step              Step              `json:"step"`
	Personal          PersonalInfo      `json:"personal"`
	Subjects          []string          `json:"selectedSubjects"`
	Marks             map[string]*Marks `json:"marks"`
	PaymentDate       string            `json:"paymentDate,omitempty"`
	AssessmentSubject string            `json:"assessmentSubject,omitempty"`
}

// NewFormState returns the state a session starts with.
func NewFormState() FormState {
	return FormState{
		Step:     StepPersonal,
		Subjects: []string{},
		Marks:    map[string]*Marks{},
	}
}

// Clone returns a deep copy.
func (s FormState) Clone() FormState {
	out := s
	out.Subjects = slices.Clone(s.Subjects)
	if out.Subjects == nil {
		out.Subjects = []string{}
	}
	out.Marks = make(map[string]*Marks, len(s.Marks))
	for id, m := range s.Marks {
		if m == nil {
			continue
		}
		cp := *m
		out.Marks[id] = &cp
	}
	return out
}

// IsSelected reports whether the subject is selected.
func (s FormState) IsSelected(id string) bool {
	return slices.Contains(s.Subjects, id)
}

// MarksFor returns the marks entry for a subject, or nil when none exists.
func (s FormState) MarksFor(id string) *Marks {
	return s.Marks[id]
}

// WithStep returns a copy positioned at step.
func (s FormState) WithStep(step Step) FormState {
	out := s.Clone()
	out.Step = step
	return out
}

// WithField returns a copy with one personal field replaced.
func (s FormState) WithField(f Field, value string) (FormState, error) {
	out := s.Clone()
	p := &out.Personal
	switch f {
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldEmail:
		p.Email = value
	case FieldPhone:
		p.Phone = value
	case FieldSchool:
		p.School = value
	case FieldGuardianName:
		p.GuardianName = value
	case FieldGuardianContact:
		p.GuardianContact = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return out, nil
}

// WithSubjectToggled returns a copy with id removed from the selection if it
// was selected, or appended otherwise. Marks are left untouched.
func (s FormState) WithSubjectToggled(id string) FormState {
	out := s.Clone()
	if i := slices.Index(out.Subjects, id); i >= 0 {
		out.Subjects = slices.Delete(out.Subjects, i, i+1)
	} else {
		out.Subjects = append(out.Subjects, id)
	}
	return out
}

// WithMark returns a copy with one side of a subject's marks replaced,
// creating the entry if needed.
func (s FormState) WithMark(id string, f MarkField, value string) (FormState, error) {
	out := s.Clone()
	m, ok := out.Marks[id]
	if !ok {
		m = &Marks{}
		out.Marks[id] = m
	}
	switch f {
	case MarkCurrent:
		m.Current = value
	case MarkTarget:
		m.Target = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return out, nil
}

// WithPaymentDate returns a copy with the payment date replaced.
func (s FormState) WithPaymentDate(date string) FormState {
	out := s.Clone()
	out.PaymentDate = date
	return out
}

// WithAssessmentSubject returns a copy with the assessment subject replaced.
func (s FormState) WithAssessmentSubject(id string) FormState {
	out := s.Clone()
	out.AssessmentSubject = id
	return out
}
