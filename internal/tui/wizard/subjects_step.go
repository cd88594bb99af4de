package wizard

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/studentconnect/intake/internal/form"
)

// SubjectsStep lists the catalog and lets the student toggle subjects.
type SubjectsStep struct {
	ctrl    *form.Controller
	cursor  int
	focused bool
	width   int
	height  int
}

// NewSubjectsStep creates the subject selection step.
func NewSubjectsStep(ctrl *form.Controller) *SubjectsStep {
	return &SubjectsStep{
		ctrl:   ctrl,
		width:  60,
		height: 20,
	}
}

// Init focuses the list.
func (s *SubjectsStep) Init() tea.Cmd {
	return s.Focus()
}

// Focus gives focus to the list.
func (s *SubjectsStep) Focus() tea.Cmd {
	s.focused = true
	return nil
}

// FocusLast is the same as Focus; the list is a single focus target.
func (s *SubjectsStep) FocusLast() tea.Cmd {
	return s.Focus()
}

// Blur removes focus from the list.
func (s *SubjectsStep) Blur() {
	s.focused = false
}

// SetSize updates the dimensions for the step.
func (s *SubjectsStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Cursor returns the highlighted row.
func (s *SubjectsStep) Cursor() int {
	return s.cursor
}

// Update handles messages for the subjects step.
func (s *SubjectsStep) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	subjects := s.ctrl.Catalog().Subjects()
	switch keyMsg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(subjects)-1 {
			s.cursor++
		}
	case "space", " ", "x":
		if s.cursor < len(subjects) {
			s.ctrl.ToggleSubject(subjects[s.cursor].ID)
		}
	case "tab":
		return func() tea.Msg { return TabExitForwardMsg{} }
	case "shift+tab":
		return func() tea.Msg { return TabExitBackwardMsg{} }
	}
	return nil
}

// View renders the subjects step.
func (s *SubjectsStep) View() string {
	var b strings.Builder
	st := s.ctrl.State()

	b.WriteString(styleLabel.Render("Select the subjects you want to enrol in"))
	b.WriteString("\n\n")

	subjects := s.ctrl.Catalog().Subjects()
	if len(subjects) == 0 {
		b.WriteString(styleMuted.Render("No subjects are configured."))
		b.WriteString("\n")
	}
	for i, subj := range subjects {
		pointer := "  "
		if i == s.cursor && s.focused {
			pointer = styleCursor.Render("> ")
		}
		box := "[ ]"
		if st.IsSelected(subj.ID) {
			box = styleSuccess.Render("[x]")
		}
		name := subj.Name
		if i == s.cursor && s.focused {
			name = styleLabelFocused.Render(name)
		}
		b.WriteString(fmt.Sprintf("%s%s %s", pointer, box, name))
		if subj.Schedule != "" {
			b.WriteString(styleMuted.Render("  " + subj.Schedule))
		}
		b.WriteString("\n")
	}

	pricing := s.ctrl.Pricing()
	b.WriteString("\n")
	b.WriteString(styleLabel.Render(fmt.Sprintf("%d selected • %s per subject • total %s",
		len(st.Subjects),
		pricing.FormatAmount(pricing.CostPerSubject),
		pricing.FormatAmount(form.TotalCost(st, pricing)),
	)))
	b.WriteString("\n\n")

	b.WriteString(renderHintBar(
		"↑↓/j/k", "navigate",
		"space", "toggle",
		"enter", "continue",
		"esc", "back",
	))

	return b.String()
}
