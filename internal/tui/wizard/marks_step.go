package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/studentconnect/intake/internal/form"
)

// markInput binds one text input to one side of a subject's marks.
type markInput struct {
	subjectID string
	field     form.MarkField
	input     textinput.Model
}

// MarksStep collects current and target marks for every selected subject.
type MarksStep struct {
	ctrl       *form.Controller
	inputs     []markInput
	focusIndex int
	width      int
	height     int
}

// NewMarksStep creates the marks step for the current selection.
func NewMarksStep(ctrl *form.Controller) *MarksStep {
	s := &MarksStep{
		ctrl:   ctrl,
		width:  60,
		height: 20,
	}
	s.Refresh()
	return s
}

// Refresh rebuilds the inputs from the controller's selection. Values come
// from stored marks, so subjects that were deselected and selected again get
// their earlier entries back.
func (s *MarksStep) Refresh() {
	st := s.ctrl.State()
	s.inputs = s.inputs[:0]
	for _, id := range st.Subjects {
		var marks form.Marks
		if m := st.MarksFor(id); m != nil {
			marks = *m
		}
		for _, f := range []form.MarkField{form.MarkCurrent, form.MarkTarget} {
			in := newInput("0-100", 12)
			in.CharLimit = 3
			in.SetValue(marks.Get(f))
			s.inputs = append(s.inputs, markInput{subjectID: id, field: f, input: in})
		}
	}
	if s.focusIndex >= len(s.inputs) {
		s.focusIndex = 0
	}
}

// Init refreshes the inputs and focuses the first one.
func (s *MarksStep) Init() tea.Cmd {
	s.Refresh()
	return s.Focus()
}

// Focus gives focus to the first input.
func (s *MarksStep) Focus() tea.Cmd {
	return s.focus(0)
}

// FocusLast gives focus to the last input.
func (s *MarksStep) FocusLast() tea.Cmd {
	return s.focus(len(s.inputs) - 1)
}

// Blur removes focus from every input.
func (s *MarksStep) Blur() {
	for i := range s.inputs {
		s.inputs[i].input.Blur()
	}
}

func (s *MarksStep) focus(idx int) tea.Cmd {
	if len(s.inputs) == 0 {
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	s.focusIndex = idx
	var cmd tea.Cmd
	for i := range s.inputs {
		if i == idx {
			cmd = s.inputs[i].input.Focus()
		} else {
			s.inputs[i].input.Blur()
		}
	}
	return cmd
}

// SetSize updates the dimensions for the step.
func (s *MarksStep) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Update handles messages for the marks step.
func (s *MarksStep) Update(msg tea.Msg) tea.Cmd {
	if len(s.inputs) == 0 {
		return nil
	}

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
			for i, mi := range s.inputs {
				if mi.input.Value() == "" {
					return s.focus(i)
				}
			}
			return nil
		}

		// Marks are whole percentages; drop anything else before it reaches the input.
		if text := keyMsg.Text; text != "" && strings.Trim(text, "0123456789") != "" {
			return nil
		}
	}

	mi := &s.inputs[s.focusIndex]
	var cmd tea.Cmd
	mi.input, cmd = mi.input.Update(msg)
	_ = s.ctrl.SetMark(mi.subjectID, mi.field, mi.input.Value())
	return cmd
}

// View renders the marks step.
func (s *MarksStep) View() string {
	var b strings.Builder

	if len(s.inputs) == 0 {
		b.WriteString(styleMuted.Render("No subjects selected. Go back and choose at least one."))
		b.WriteString("\n\n")
		b.WriteString(renderHintBar("esc", "back"))
		return b.String()
	}

	b.WriteString(styleLabel.Render("Enter your current and target marks (%)"))
	b.WriteString("\n\n")

	cat := s.ctrl.Catalog()
	for i := 0; i+1 < len(s.inputs); i += 2 {
		cur, tgt := s.inputs[i], s.inputs[i+1]
		name := cur.subjectID
		if subj, ok := cat.Lookup(cur.subjectID); ok {
			name = subj.Name
		}
		focused := s.focusIndex == i || s.focusIndex == i+1

		b.WriteString(fieldLabel(name, true, focused))
		b.WriteString("\n")
		b.WriteString(styleMuted.Render("Current "))
		b.WriteString(cur.input.View())
		b.WriteString(styleMuted.Render("  Target "))
		b.WriteString(tgt.input.View())
		b.WriteString("\n\n")
	}

	b.WriteString(renderHintBar(
		"tab", "next field",
		"enter", "continue",
		"esc", "back",
	))

	return b.String()
}
