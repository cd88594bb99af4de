// Package catalog holds the static configuration the intake form is built on:
// the selectable subjects, the per-subject price and the bank account fees
// are paid into.
package catalog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Subject is a selectable upgrade subject.
type Subject struct {
	ID       string `mapstructure:"id" yaml:"id" json:"id"`
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	Schedule string `mapstructure:"schedule" yaml:"schedule" json:"schedule"`
}

// Catalog is an immutable, ordered set of subjects indexed by ID.
type Catalog struct {
	subjects []Subject
	byID     map[string]Subject
}

// New builds a catalog from the given subjects. Later duplicates of an ID are
// dropped so lookups stay unambiguous.
func New(subjects []Subject) *Catalog {
	c := &Catalog{
		subjects: make([]Subject, 0, len(subjects)),
		byID:     make(map[string]Subject, len(subjects)),
	}
	for _, s := range subjects {
		if s.ID == "" {
			continue
		}
		if _, dup := c.byID[s.ID]; dup {
			continue
		}
		c.subjects = append(c.subjects, s)
		c.byID[s.ID] = s
	}
	return c
}

// DefaultSubjects returns the built-in subject list.
func DefaultSubjects() []Subject {
	return []Subject{
		{ID: "mathematics", Name: "Mathematics", Schedule: "Saturday 08:00 - 10:00"},
		{ID: "physics", Name: "Physics", Schedule: "Saturday 10:30 - 12:30"},
		{ID: "chemistry", Name: "Chemistry", Schedule: "Saturday 13:30 - 15:30"},
		{ID: "biology", Name: "Biology", Schedule: "Sunday 08:00 - 10:00"},
		{ID: "english", Name: "English", Schedule: "Sunday 10:30 - 12:30"},
		{ID: "history", Name: "History", Schedule: "Sunday 13:30 - 15:30"},
	}
}

// Default returns a catalog of the built-in subjects.
func Default() *Catalog {
	return New(DefaultSubjects())
}

// Subjects returns the subjects in display order.
func (c *Catalog) Subjects() []Subject {
	out := make([]Subject, len(c.subjects))
	copy(out, c.subjects)
	return out
}

// Lookup returns the subject with the given ID.
func (c *Catalog) Lookup(id string) (Subject, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Has reports whether id is a catalog subject.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of subjects.
func (c *Catalog) Len() int {
	return len(c.subjects)
}

// Pricing is the flat per-subject fee.
type Pricing struct {
	CostPerSubject int64  `mapstructure:"cost_per_subject" yaml:"cost_per_subject" json:"cost_per_subject"`
	Currency       string `mapstructure:"currency" yaml:"currency" json:"currency"`
	Locale         string `mapstructure:"locale" yaml:"locale" json:"locale"`
}

// DefaultPricing returns the built-in pricing.
func DefaultPricing() Pricing {
	return Pricing{
		CostPerSubject: 400,
		Currency:       "LKR",
		Locale:         "en",
	}
}

// Total returns the fee for n subjects.
func (p Pricing) Total(n int) int64 {
	return int64(n) * p.CostPerSubject
}

// FormatAmount renders amount with the currency code and the locale's digit
// grouping, e.g. "LKR 1,600".
func (p Pricing) FormatAmount(amount int64) string {
	tag, err := language.Parse(p.Locale)
	if err != nil {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	if p.Currency == "" {
		return printer.Sprintf("%d", amount)
	}
	return printer.Sprintf("%s %d", p.Currency, amount)
}

// PaymentAccount is the bank account students pay fees into.
type PaymentAccount struct {
	Bank          string `mapstructure:"bank" yaml:"bank" json:"bank"`
	Holder        string `mapstructure:"holder" yaml:"holder" json:"holder"`
	AccountNumber string `mapstructure:"account_number" yaml:"account_number" json:"account_number"`
	BranchCode    string `mapstructure:"branch_code" yaml:"branch_code" json:"branch_code"`
	ReferenceNote string `mapstructure:"reference_note" yaml:"reference_note" json:"reference_note"`
}

// DefaultPaymentAccount returns placeholder bank details. Deployments are
// expected to override them in intake.yml.
func DefaultPaymentAccount() PaymentAccount {
	return PaymentAccount{
		Bank:          "Commercial Bank",
		Holder:        "Student Connect Tutoring",
		AccountNumber: "1000 2345 6789",
		BranchCode:    "7056-012",
		ReferenceNote: "Use the student's full name as the payment reference.",
	}
}

// DefaultVenue is the class venue shown on the review screen.
const DefaultVenue = "Student Connect Learning Centre, 42 Temple Road, Colombo 10"
