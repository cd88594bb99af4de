// Package receipt renders an intake review as markdown. The same document is
// shown in the wizard's review pane and written next to file submissions.
package receipt

import (
	"fmt"
	"strings"

	"github.com/studentconnect/intake/internal/catalog"
	"github.com/studentconnect/intake/internal/form"
)

// Details is the static information printed alongside the review.
type Details struct {
	Account catalog.PaymentAccount
	Venue   string
}

// Markdown renders the review, cost breakdown and payment instructions.
func Markdown(r form.Review, d Details) string {
	var b strings.Builder

	b.WriteString("# Review Your Information\n\n")

	b.WriteString("## Personal Information\n\n")
	p := r.Personal
	row(&b, "Name", strings.TrimSpace(p.FirstName+" "+p.LastName))
	row(&b, "Email", p.Email)
	row(&b, "Phone", p.Phone)
	row(&b, "School", p.School)
	if p.GuardianName != "" {
		row(&b, "Guardian", p.GuardianName)
	}
	if p.GuardianContact != "" {
		row(&b, "Guardian Contact", p.GuardianContact)
	}
	b.WriteString("\n")

	b.WriteString("## Selected Subjects and Marks\n\n")
	if len(r.LineItems) == 0 {
		b.WriteString("_No subjects selected._\n\n")
	} else {
		b.WriteString("| Subject | Schedule | Current | Target | Fee |\n")
		b.WriteString("|---------|----------|---------|--------|-----|\n")
		for _, item := range r.LineItems {
			name := item.Name
			if !item.Known {
				name = item.SubjectID
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				cell(name),
				cell(orDash(item.Schedule)),
				cell(percent(item.Marks.Current)),
				cell(percent(item.Marks.Target)),
				cell(item.CostDisplay),
			)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "**Total:** %s\n\n", r.TotalDisplay)
	}

	if r.AssessmentSubject != "" {
		fmt.Fprintf(&b, "**Assessment subject:** %s\n\n", assessmentName(r))
	}

	b.WriteString("## Payment\n\n")
	row(&b, "Payment date", orDash(r.PaymentDateDisplay))
	row(&b, "Amount", r.TotalDisplay)
	row(&b, "Bank", d.Account.Bank)
	row(&b, "Account holder", d.Account.Holder)
	row(&b, "Account number", d.Account.AccountNumber)
	row(&b, "Branch code", d.Account.BranchCode)
	row(&b, "Reference", r.PaymentReference)
	if d.Account.ReferenceNote != "" {
		fmt.Fprintf(&b, "\n> %s\n", d.Account.ReferenceNote)
	}

	if d.Venue != "" {
		b.WriteString("\n## Venue\n\n")
		b.WriteString(d.Venue)
		b.WriteString("\n")
	}

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "- **%s:** %s\n", label, orDash(value))
}

// cell escapes pipes so values cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func percent(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s + "%"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func assessmentName(r form.Review) string {
	for _, item := range r.LineItems {
		if item.SubjectID == r.AssessmentSubject && item.Known {
			return item.Name
		}
	}
	return r.AssessmentSubject
}
