package wizard

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/studentconnect/intake/internal/form"
)

// PersonalStep collects the student's and guardian's details.
type PersonalStep struct {
	ctrl       *form.Controller
	fields     []form.Field
	inputs     []textinput.Model
	focusIndex int
	width      int
	height     int
}

// NewPersonalStep creates the step with one input per personal field,
// pre-filled from the controller.
func NewPersonalStep(ctrl *form.Controller) *PersonalStep {
	st := ctrl.State()
	fields := form.PersonalFields
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		inputs[i] = newInput(placeholderFor(f), 50)
		inputs[i].SetValue(st.Personal.Get(f))
	}

	return &PersonalStep{
		ctrl:   ctrl,
		fields: fields,
		inputs: inputs,
		width:  60,
		height: 20,
	}
}

func placeholderFor(f form.Field) string {
	switch f {
	case form.FieldEmail:
		return "name@example.com"
	case form.FieldPhone, form.FieldGuardianContact:
		return "07X XXX XXXX"
	default:
		return "Enter " + strings.ToLower(f.Label()) + "..."
	}
}

// Init focuses the first input.
func (s *PersonalStep) Init() tea.Cmd {
	return s.Focus()
}

// Focus gives focus to the first input.
func (s *PersonalStep) Focus() tea.Cmd {
	return s.focus(0)
}

// FocusLast gives focus to the last input.
func (s *PersonalStep) FocusLast() tea.Cmd {
	return s.focus(len(s.inputs) - 1)
}

// Blur removes focus from every input.
func (s *PersonalStep) Blur() {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
}

func (s *PersonalStep) focus(idx int) tea.Cmd {
	s.focusIndex = idx
	var cmd tea.Cmd
	for i := range s.inputs {
		if i == idx {
			cmd = s.inputs[i].Focus()
		} else {
			s.inputs[i].Blur()
		}
	}
	return cmd
}

// SetSize updates the dimensions for the step.
func (s *PersonalStep) SetSize(width, height int) {
	s.width = width
	s.height = height
	for i := range s.inputs {
		s.inputs[i].SetWidth(width - 4)
	}
}

// Update handles messages for the personal step.
func (s *PersonalStep) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "tab", "down":
			if s.focusIndex == len(s.inputs)-1 {
				return func() tea.Msg { return TabExitForwardMsg{} }
			}
			return s.focus(s.focusIndex + 1)

		case "shift+tab", "up":
			if s.focusIndex == 0 {
				return func() tea.Msg { return TabExitBackwardMsg{} }
			}
			return s.focus(s.focusIndex - 1)

		case "enter":
			// Only reached while the step is incomplete: jump to the first
			// required field that is still blank.
			if idx := s.firstMissing(); idx >= 0 {
				return s.focus(idx)
			}
			return nil
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focusIndex], cmd = s.inputs[s.focusIndex].Update(msg)
	// fields come from form.PersonalFields so SetField cannot fail
	_ = s.ctrl.SetField(s.fields[s.focusIndex], s.inputs[s.focusIndex].Value())
	return cmd
}

func (s *PersonalStep) firstMissing() int {
	missing := s.ctrl.Missing(form.StepPersonal)
	for i, f := range s.fields {
		if slices.Contains(missing, string(f)) {
			return i
		}
	}
	return -1
}

// View renders the personal step.
func (s *PersonalStep) View() string {
	var b strings.Builder

	for i, f := range s.fields {
		b.WriteString(fieldLabel(f.Label(), f.Required(), i == s.focusIndex))
		b.WriteString("\n")
		b.WriteString(s.inputs[i].View())
		b.WriteString("\n")
		if i < len(s.fields)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"tab", "next field",
		"enter", "continue",
		"esc", "cancel",
	))

	return b.String()
}

// TabExitForwardMsg is sent when Tab is pressed on the last input.
// Parent should move focus to buttons.
type TabExitForwardMsg struct{}

// TabExitBackwardMsg is sent when Shift+Tab is pressed on the first input.
// Parent should move focus to buttons (from end).
type TabExitBackwardMsg struct{}
