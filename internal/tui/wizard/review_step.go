package wizard

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/glamour/v2"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/receipt"
)

const (
	reviewFocusDate = iota
	reviewFocusAssessment
)

// ReviewStep shows the derived summary and collects payment scheduling.
type ReviewStep struct {
	ctrl       *form.Controller
	details    receipt.Details
	viewport   viewport.Model // Scrollable rendered receipt
	dateInput  textinput.Model
	dateError  string
	focusIndex int
	focused    bool
	width      int
	height     int
}

// NewReviewStep creates the review step.
func NewReviewStep(ctrl *form.Controller, details receipt.Details) *ReviewStep {
	vp := viewport.New(
		viewport.WithWidth(60),
		viewport.WithHeight(10),
	)
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	dateInput := newInput(form.DateLayout, 20)
	dateInput.CharLimit = len(form.DateLayout)
	dateInput.SetValue(ctrl.State().PaymentDate)

	s := &ReviewStep{
		ctrl:      ctrl,
		details:   details,
		viewport:  vp,
		dateInput: dateInput,
		width:     60,
		height:    20,
	}
	s.Refresh()
	return s
}

// renderMarkdown renders markdown content using glamour.
// Falls back to plain text if rendering fails.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimSuffix(rendered, "\n")
}

// Markdown returns the receipt for the controller's current state.
func (s *ReviewStep) Markdown() string {
	return receipt.Markdown(s.ctrl.Review(), s.details)
}

// Refresh re-renders the summary from the controller.
func (s *ReviewStep) Refresh() {
	s.viewport.SetContent(renderMarkdown(s.Markdown(), s.width))
}

// Init refreshes the summary and focuses the date input.
func (s *ReviewStep) Init() tea.Cmd {
	s.Refresh()
	s.viewport.GotoTop()
	return s.Focus()
}

// Focus gives focus to the payment date input.
func (s *ReviewStep) Focus() tea.Cmd {
	s.focused = true
	s.focusIndex = reviewFocusDate
	return s.dateInput.Focus()
}

// FocusLast gives focus to the assessment selector.
func (s *ReviewStep) FocusLast() tea.Cmd {
	s.focused = true
	s.focusIndex = reviewFocusAssessment
	s.dateInput.Blur()
	return nil
}

// Blur removes focus from the step.
func (s *ReviewStep) Blur() {
	s.focused = false
	s.dateInput.Blur()
}

// SetSize updates the dimensions for the review step.
func (s *ReviewStep) SetSize(width, height int) {
	s.width = width
	s.height = height

	s.viewport.SetWidth(width)
	// Date, assessment, error and hint lines sit below the viewport
	viewportHeight := height - 8
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	s.viewport.SetHeight(viewportHeight)
	s.dateInput.SetWidth(20)

	s.Refresh()
}

// DateError returns the message for the last rejected payment date.
func (s *ReviewStep) DateError() string {
	return s.dateError
}

// Update handles messages for the review step.
func (s *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyPressMsg); ok {
		switch keyMsg.String() {
		case "tab":
			if s.focusIndex == reviewFocusAssessment {
				return func() tea.Msg { return TabExitForwardMsg{} }
			}
			return s.FocusLast()

		case "shift+tab":
			if s.focusIndex == reviewFocusDate {
				return func() tea.Msg { return TabExitBackwardMsg{} }
			}
			return s.Focus()

		case "pgup", "pgdown", "up", "down":
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return cmd

		case "left", "h":
			if s.focusIndex == reviewFocusAssessment {
				s.cycleAssessment(-1)
				return nil
			}

		case "right", "l":
			if s.focusIndex == reviewFocusAssessment {
				s.cycleAssessment(1)
				return nil
			}
		}

		if s.focusIndex == reviewFocusAssessment {
			return nil
		}

		var cmd tea.Cmd
		s.dateInput, cmd = s.dateInput.Update(msg)
		s.applyDate()
		return cmd
	}

	// Mouse wheel and other messages scroll the summary
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return cmd
}

// applyDate pushes the typed date to the controller. Until a full date is
// typed the stored date is cleared so the step stays gated.
func (s *ReviewStep) applyDate() {
	value := strings.TrimSpace(s.dateInput.Value())
	s.dateError = ""

	if len(value) < len(form.DateLayout) {
		_ = s.ctrl.SetPaymentDate("")
		s.Refresh()
		return
	}

	if err := s.ctrl.SetPaymentDate(value); err != nil {
		s.dateError = err.Error()
		_ = s.ctrl.SetPaymentDate("")
	}
	s.Refresh()
}

// cycleAssessment steps through "none" and the selected subjects.
func (s *ReviewStep) cycleAssessment(delta int) {
	st := s.ctrl.State()
	options := append([]string{""}, st.Subjects...)

	current := 0
	for i, id := range options {
		if id == st.AssessmentSubject {
			current = i
			break
		}
	}
	next := (current + delta + len(options)) % len(options)
	s.ctrl.SetAssessmentSubject(options[next])
	s.Refresh()
}

func (s *ReviewStep) assessmentLabel() string {
	id := s.ctrl.State().AssessmentSubject
	if id == "" {
		return "None"
	}
	if subj, ok := s.ctrl.Catalog().Lookup(id); ok {
		return subj.Name
	}
	return id
}

// View renders the review step.
func (s *ReviewStep) View() string {
	var b strings.Builder

	b.WriteString(s.viewport.View())
	b.WriteString("\n\n")

	dateFocused := s.focused && s.focusIndex == reviewFocusDate
	b.WriteString(fieldLabel("Payment Date", true, dateFocused))
	b.WriteString("  ")
	b.WriteString(s.dateInput.View())
	b.WriteString("\n")
	if s.dateError != "" {
		b.WriteString(styleError.Render("✗ " + s.dateError))
		b.WriteString("\n")
	}

	assessFocused := s.focused && s.focusIndex == reviewFocusAssessment
	b.WriteString(fieldLabel("Assessment Subject", s.ctrl.AssessmentRequired(), assessFocused))
	b.WriteString("  ")
	label := "‹ " + s.assessmentLabel() + " ›"
	if assessFocused {
		b.WriteString(styleCursor.Render(label))
	} else {
		b.WriteString(styleMuted.Render(label))
	}
	b.WriteString("\n\n")

	b.WriteString(renderHintBar(
		"pgup/pgdn", "scroll",
		"tab", "next",
		"←→", "assessment",
		"enter", "submit",
		"esc", "back",
	))

	return b.String()
}
