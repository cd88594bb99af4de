package form

import (
	"time"

	"github.com/studentconnect/intake/internal/catalog"
)

// DateLayout is the wire format of payment dates.
const DateLayout = "2006-01-02"

// displayDateLayout renders dates as "14 March 2025".
const displayDateLayout = "2 January 2006"

// LineItem is one selected subject on the review screen.
type LineItem struct {
	SubjectID   string `json:"subjectId"`
	Name        string `json:"name,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
	Known       bool   `json:"known"` // false when the ID has no catalog entry
	Marks       Marks  `json:"marks"`
	HasMarks    bool   `json:"hasMarks"`
	Cost        int64  `json:"cost"`
	CostDisplay string `json:"costDisplay"`
}

// Review is everything shown on the last step. It is derived from a FormState
// on demand and never stored.
type Review struct {
	Personal           PersonalInfo `json:"personal"`
	LineItems          []LineItem   `json:"lineItems"`
	CostPerSubject     int64        `json:"costPerSubject"`
	TotalCost          int64        `json:"totalCost"`
	TotalDisplay       string       `json:"totalDisplay"`
	PaymentReference   string       `json:"paymentReference"`
	PaymentDate        string       `json:"paymentDate,omitempty"`
	PaymentDateDisplay string       `json:"paymentDateDisplay,omitempty"`
	AssessmentSubject  string       `json:"assessmentSubject,omitempty"`
}

// TotalCost is the number of selected subjects times the flat price.
func TotalCost(st FormState, pricing catalog.Pricing) int64 {
	return pricing.Total(len(st.Subjects))
}

// PaymentReference is the text students quote on their bank transfer.
func PaymentReference(p PersonalInfo) string {
	return p.FirstName + " " + p.LastName
}

// FormatDate renders an ISO date as a long date. Empty input stays empty and
// unparsable input is returned unchanged.
func FormatDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(displayDateLayout)
}

// Derive computes the review for st.
func Derive(st FormState, cat *catalog.Catalog, pricing catalog.Pricing) Review {
	items := make([]LineItem, 0, len(st.Subjects))
	for _, id := range st.Subjects {
		item := LineItem{
			SubjectID: id,
			Cost:      pricing.CostPerSubject,
		}
		item.CostDisplay = pricing.FormatAmount(item.Cost)
		if subj, ok := cat.Lookup(id); ok {
			item.Name = subj.Name
			item.Schedule = subj.Schedule
			item.Known = true
		}
		if m := st.Marks[id]; m != nil {
			item.Marks = *m
			item.HasMarks = true
		}
		items = append(items, item)
	}

	total := TotalCost(st, pricing)
	return Review{
		Personal:           st.Personal,
		LineItems:          items,
		CostPerSubject:     pricing.CostPerSubject,
		TotalCost:          total,
		TotalDisplay:       pricing.FormatAmount(total),
		PaymentReference:   PaymentReference(st.Personal),
		PaymentDate:        st.PaymentDate,
		PaymentDateDisplay: FormatDate(st.PaymentDate),
		AssessmentSubject:  st.AssessmentSubject,
	}
}
