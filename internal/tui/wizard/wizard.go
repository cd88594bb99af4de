// Package wizard is the terminal front end of the intake form: one bubbletea
// component per step, a step indicator and a button bar, all driven by a
// form.Controller.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/editor"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/logger"
	"github.com/studentconnect/intake/internal/receipt"
)

// ErrCancelled is returned by RunWizard when the student leaves without
// submitting.
var ErrCancelled = errors.New("wizard cancelled by user")

// Result is what a completed wizard hands back.
type Result struct {
	Ack   form.Ack
	State form.FormState
}

// stepComponent is implemented by every step of the wizard.
type stepComponent interface {
	Init() tea.Cmd
	Focus() tea.Cmd
	FocusLast() tea.Cmd
	Blur()
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
}

// WizardModel is the main BubbleTea model for the intake wizard.
// It manages the four-step flow: personal info → subjects → marks → review.
type WizardModel struct {
	ctx     context.Context
	ctrl    *form.Controller
	details receipt.Details

	steps map[form.Step]stepComponent

	// Button bar with focus tracking
	buttonBar     *ButtonBar
	buttonFocused bool

	cancelled  bool
	submitting bool   // A submit command is in flight
	submitErr  string // Last submission failure
	done       bool   // Submission acknowledged
	result     Result

	width  int // Terminal width
	height int // Terminal height
}

// NewWizardModel creates the wizard around ctrl.
func NewWizardModel(ctx context.Context, ctrl *form.Controller, details receipt.Details) *WizardModel {
	m := &WizardModel{
		ctx:     ctx,
		ctrl:    ctrl,
		details: details,
		steps: map[form.Step]stepComponent{
			form.StepPersonal: NewPersonalStep(ctrl),
			form.StepSubjects: NewSubjectsStep(ctrl),
			form.StepMarks:    NewMarksStep(ctrl),
			form.StepReview:   NewReviewStep(ctrl, details),
		},
		buttonBar: NewButtonBar(nil),
		width:     80,
		height:    40,
	}
	m.refreshButtons()
	return m
}

// RunWizard is the entry point for the intake wizard.
// It creates a standalone BubbleTea program, runs it, and returns the result.
// Returns ErrCancelled if the student leaves before submitting.
func RunWizard(ctx context.Context, ctrl *form.Controller, details receipt.Details) (*Result, error) {
	m := NewWizardModel(ctx, ctrl, details)

	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	wizModel, ok := finalModel.(*WizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type")
	}

	if wizModel.cancelled || !wizModel.done {
		return nil, ErrCancelled
	}

	return &wizModel.result, nil
}

// Init initializes the wizard model.
func (m *WizardModel) Init() tea.Cmd {
	return m.current().Init()
}

func (m *WizardModel) current() stepComponent {
	return m.steps[m.ctrl.Step()]
}

// Update handles messages for the wizard.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.update(msg)
	m.refreshButtons()
	return model, cmd
}

func (m *WizardModel) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			if !m.done {
				m.cancelled = true
			}
			return m, tea.Quit
		}

		if m.submitting {
			return m, nil
		}

		if m.done {
			return m.updateDone(msg)
		}

		if m.buttonFocused {
			switch msg.String() {
			case "tab", "right":
				if !m.buttonBar.FocusNext() {
					m.buttonFocused = false
					return m, m.current().Focus()
				}
				return m, nil
			case "shift+tab", "left":
				if !m.buttonBar.FocusPrev() {
					m.buttonFocused = false
					return m, m.current().FocusLast()
				}
				return m, nil
			case "enter", "space", " ":
				if btn, ok := m.buttonBar.FocusedButton(); ok {
					return m.activateButton(btn)
				}
				return m, nil
			}
		}

		switch msg.String() {
		case "esc":
			return m.back()
		case "enter":
			if m.ctrl.Step() == form.LastStep {
				if m.ctrl.CanSubmit() {
					return m, m.submit()
				}
			} else if m.ctrl.CanAdvance() {
				return m.next()
			}
			// Incomplete step: let the step point at what is missing
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case TabExitForwardMsg:
		m.current().Blur()
		if m.buttonBar.FocusFirst() {
			m.buttonFocused = true
			return m, nil
		}
		return m, m.current().Focus()

	case TabExitBackwardMsg:
		m.current().Blur()
		if m.buttonBar.FocusLast() {
			m.buttonFocused = true
			return m, nil
		}
		return m, m.current().FocusLast()

	case SubmitResultMsg:
		m.submitting = false
		if msg.Err != nil {
			m.submitErr = msg.Err.Error()
			return m, nil
		}
		m.done = true
		m.submitErr = ""
		m.result = Result{Ack: msg.Ack, State: m.ctrl.State()}
		return m, nil

	case ReceiptClosedMsg:
		if msg.Err != nil {
			logger.Warn("Editor exited with error: %v", msg.Err)
		}
		return m, nil
	}

	if m.done || m.submitting || m.buttonFocused {
		return m, nil
	}
	return m, m.current().Update(msg)
}

func (m *WizardModel) updateDone(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		if m.canOpenReceipt() {
			return m, openReceipt(m.result.Ack.Location)
		}
	case "enter", "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *WizardModel) activateButton(btn Button) (tea.Model, tea.Cmd) {
	switch btn.ID {
	case ButtonCancel:
		m.cancelled = true
		return m, tea.Quit
	case ButtonBack:
		return m.back()
	case ButtonNext:
		return m.next()
	case ButtonSubmit:
		return m, m.submit()
	}
	return m, nil
}

// next advances the controller and initializes the new step.
func (m *WizardModel) next() (tea.Model, tea.Cmd) {
	if !m.ctrl.Advance() {
		return m, nil
	}
	return m, m.enterStep()
}

// back retreats, or cancels on the first step.
func (m *WizardModel) back() (tea.Model, tea.Cmd) {
	if !m.ctrl.Retreat() {
		m.cancelled = true
		return m, tea.Quit
	}
	m.submitErr = ""
	return m, m.enterStep()
}

func (m *WizardModel) enterStep() tea.Cmd {
	for _, s := range m.steps {
		s.Blur()
	}
	m.buttonBar.Blur()
	m.buttonFocused = false
	m.updateSizes()
	return m.current().Init()
}

// submit starts the submission in a command. Further input is ignored until
// a SubmitResultMsg arrives.
func (m *WizardModel) submit() tea.Cmd {
	if m.submitting || !m.ctrl.CanSubmit() {
		return nil
	}
	m.submitting = true
	m.submitErr = ""

	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ack, err := ctrl.Submit(ctx)
		return SubmitResultMsg{Ack: ack, Err: err}
	}
}

func (m *WizardModel) canOpenReceipt() bool {
	return os.Getenv("EDITOR") != "" && strings.HasSuffix(m.result.Ack.Location, ".md")
}

// openReceipt launches $EDITOR on the written receipt.
func openReceipt(path string) tea.Cmd {
	cmd, err := editor.Command("intake", path)
	if err != nil {
		logger.Warn("Cannot open editor: %v", err)
		return nil
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return ReceiptClosedMsg{Err: err}
	})
}

// refreshButtons rebuilds the button bar from the controller's gates.
func (m *WizardModel) refreshButtons() {
	var buttons []Button
	switch step := m.ctrl.Step(); {
	case step == form.FirstStep:
		buttons = CreateCancelNextButtons(m.ctrl.CanAdvance(), "Next →")
	case step == form.LastStep:
		buttons = CreateBackNextButtons(!m.submitting, m.ctrl.CanSubmit() && !m.submitting, ButtonSubmit, "Submit")
	default:
		buttons = CreateBackNextButtons(true, m.ctrl.CanAdvance(), ButtonNext, "Next →")
	}
	m.buttonBar.SetButtons(buttons)
	if m.buttonFocused && !m.buttonBar.Focused() {
		m.buttonFocused = false
	}
}

func (m *WizardModel) modalWidth() int {
	w := m.width - 10
	if w < 60 {
		w = 60
	}
	if w > 100 {
		w = 100
	}
	return w
}

// updateSizes updates the size of every step component.
func (m *WizardModel) updateSizes() {
	// Border and padding of the modal container
	contentWidth := m.modalWidth() - 6
	// Title, progress, buttons and spacing
	contentHeight := m.height - 14
	if contentHeight < 10 {
		contentHeight = 10
	}
	for _, s := range m.steps {
		s.SetSize(contentWidth, contentHeight)
	}
	m.buttonBar.SetWidth(contentWidth)
}

// View renders the wizard UI.
func (m *WizardModel) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.renderModal()

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// renderModal wraps the step content in a modal container with title.
func (m *WizardModel) renderModal() string {
	modalWidth := m.modalWidth()
	innerWidth := modalWidth - 6

	var sections []string
	step := m.ctrl.Step()
	if m.done {
		sections = append(sections, styleModalTitle.Render("Student Intake - Submitted"))
		sections = append(sections, "")
		sections = append(sections, m.renderDone())
	} else {
		title := fmt.Sprintf("Student Intake - Step %d of %d: %s", step, form.StepCount, step.Label())
		sections = append(sections, styleModalTitle.Render(title))
		sections = append(sections, "")
		sections = append(sections, RenderProgress(DescribeProgress(m.ctrl.Steps(), int(step)), innerWidth))
		sections = append(sections, "")
		sections = append(sections, m.current().View())
		sections = append(sections, "")
		if m.submitting {
			sections = append(sections, styleMuted.Render("Submitting..."))
		}
		if m.submitErr != "" {
			sections = append(sections, styleError.Render("✗ "+m.submitErr))
		}
		sections = append(sections, m.buttonBar.Render())
	}

	modalContent := styleModalContainer.Width(modalWidth).Render(strings.Join(sections, "\n"))

	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		modalContent,
	)
}

func (m *WizardModel) renderDone() string {
	var b strings.Builder
	ack := m.result.Ack
	review := m.ctrl.Review()

	b.WriteString(styleSuccess.Render("✓ Your enrolment has been submitted"))
	b.WriteString("\n\n")
	b.WriteString(styleLabel.Render("Payment reference: "))
	b.WriteString(review.PaymentReference)
	b.WriteString("\n")
	b.WriteString(styleLabel.Render("Amount due: "))
	b.WriteString(review.TotalDisplay)
	b.WriteString("\n")
	if review.PaymentDateDisplay != "" {
		b.WriteString(styleLabel.Render("Pay by: "))
		b.WriteString(review.PaymentDateDisplay)
		b.WriteString("\n")
	}
	b.WriteString(styleLabel.Render("Submission ID: "))
	b.WriteString(ack.ID)
	b.WriteString("\n")
	if ack.Location != "" {
		b.WriteString(styleLabel.Render("Stored at: "))
		b.WriteString(ack.Location)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.canOpenReceipt() {
		b.WriteString(renderHintBar("e", "open receipt", "enter", "exit"))
	} else {
		b.WriteString(renderHintBar("enter", "exit"))
	}
	return b.String()
}

// Cancelled reports whether the student left the wizard.
func (m *WizardModel) Cancelled() bool {
	return m.cancelled
}

// Done reports whether the submission was acknowledged.
func (m *WizardModel) Done() bool {
	return m.done
}

// SubmitResultMsg carries the outcome of a submission command.
type SubmitResultMsg struct {
	Ack form.Ack
	Err error
}

// ReceiptClosedMsg is sent when the external editor exits.
type ReceiptClosedMsg struct {
	Err error
}
