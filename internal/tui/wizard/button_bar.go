package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// ButtonID identifies what a button does when activated.
type ButtonID int

const (
	ButtonBack ButtonID = iota
	ButtonCancel
	ButtonNext
	ButtonSubmit
)

// Button represents a single button in the button bar.
type Button struct {
	ID    ButtonID
	Label string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons  []Button
	focusIdx int // -1 when the bar does not have focus
	width    int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons:  buttons,
		focusIdx: -1,
		width:    60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// SetButtons replaces the buttons, keeping focus on the same position when
// that button is still enabled.
func (b *ButtonBar) SetButtons(buttons []Button) {
	b.buttons = buttons
	if b.focusIdx >= len(b.buttons) || (b.focusIdx >= 0 && b.buttons[b.focusIdx].State == ButtonDisabled) {
		b.focusIdx = -1
		b.FocusFirst()
	}
}

// Focused reports whether any button has focus.
func (b *ButtonBar) Focused() bool {
	return b.focusIdx >= 0
}

// FocusFirst focuses the first enabled button.
// Returns false if every button is disabled.
func (b *ButtonBar) FocusFirst() bool {
	b.focusIdx = -1
	return b.FocusNext()
}

// FocusLast focuses the last enabled button.
// Returns false if every button is disabled.
func (b *ButtonBar) FocusLast() bool {
	b.focusIdx = len(b.buttons)
	return b.FocusPrev()
}

// FocusNext moves focus to the next enabled button.
// Returns false when focus runs off the end; the bar is then blurred.
func (b *ButtonBar) FocusNext() bool {
	for i := b.focusIdx + 1; i < len(b.buttons); i++ {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return true
		}
	}
	b.focusIdx = -1
	return false
}

// FocusPrev moves focus to the previous enabled button.
// Returns false when focus runs off the start; the bar is then blurred.
func (b *ButtonBar) FocusPrev() bool {
	for i := b.focusIdx - 1; i >= 0; i-- {
		if b.buttons[i].State != ButtonDisabled {
			b.focusIdx = i
			return true
		}
	}
	b.focusIdx = -1
	return false
}

// Blur removes focus from the bar.
func (b *ButtonBar) Blur() {
	b.focusIdx = -1
}

// FocusedButton returns the focused button, if any.
func (b *ButtonBar) FocusedButton() (Button, bool) {
	if b.focusIdx < 0 || b.focusIdx >= len(b.buttons) {
		return Button{}, false
	}
	return b.buttons[b.focusIdx], true
}

// Render renders the button bar with proper spacing and styling.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	normalStyle := lipgloss.NewStyle().
		Foreground(colorText).
		Background(colorSurface0).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	disabledStyle := lipgloss.NewStyle().
		Foreground(colorOverlay0).
		Background(lipgloss.Color("#181825")).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	focusedStyle := lipgloss.NewStyle().
		Foreground(colorBase).
		Background(colorBorderFocused).
		Bold(true).
		Padding(0, 2).
		MarginLeft(1).
		MarginRight(1)

	var renderedButtons []string
	for i, btn := range b.buttons {
		state := btn.State
		if i == b.focusIdx && state != ButtonDisabled {
			state = ButtonFocused
		}

		var rendered string
		switch state {
		case ButtonDisabled:
			rendered = disabledStyle.Render(btn.Label)
		case ButtonFocused:
			rendered = focusedStyle.Render(btn.Label)
		default: // ButtonNormal
			rendered = normalStyle.Render(btn.Label)
		}
		renderedButtons = append(renderedButtons, rendered)
	}

	result := strings.Join(renderedButtons, "")

	return lipgloss.Place(b.width, 1, lipgloss.Center, lipgloss.Center, result)
}

// CreateBackNextButtons creates standard Back/Next button set.
// backEnabled: whether Back button is enabled
// nextEnabled: whether Next button is enabled (false if step invalid)
// nextID/nextLabel: what the forward button does and says ("Next", "Submit")
func CreateBackNextButtons(backEnabled, nextEnabled bool, nextID ButtonID, nextLabel string) []Button {
	buttons := make([]Button, 0, 2)

	backState := ButtonNormal
	if !backEnabled {
		backState = ButtonDisabled
	}
	buttons = append(buttons, Button{
		ID:    ButtonBack,
		Label: "← Back",
		State: backState,
	})

	nextState := ButtonNormal
	if !nextEnabled {
		nextState = ButtonDisabled
	}
	buttons = append(buttons, Button{
		ID:    nextID,
		Label: nextLabel,
		State: nextState,
	})

	return buttons
}

// CreateCancelNextButtons creates Cancel/Next button set (for step 1).
func CreateCancelNextButtons(nextEnabled bool, nextLabel string) []Button {
	buttons := make([]Button, 0, 2)

	buttons = append(buttons, Button{
		ID:    ButtonCancel,
		Label: "Cancel",
		State: ButtonNormal,
	})

	nextState := ButtonNormal
	if !nextEnabled {
		nextState = ButtonDisabled
	}
	buttons = append(buttons, Button{
		ID:    ButtonNext,
		Label: nextLabel,
		State: nextState,
	})

	return buttons
}
