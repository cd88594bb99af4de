package wizard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// StepStatus classifies one step relative to the current position.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepCurrent
	StepCompleted
)

func (s StepStatus) String() string {
	switch s {
	case StepCurrent:
		return "current"
	case StepCompleted:
		return "completed"
	default:
		return "pending"
	}
}

// IndicatorStep is one entry of the step indicator.
type IndicatorStep struct {
	Number int
	Label  string
	Status StepStatus
}

// Indicator describes progress through an ordered list of steps.
type Indicator struct {
	Steps []IndicatorStep
	Ratio float64 // 0 at the first step, 1 at the last
}

// DescribeProgress classifies every step against current (1-based).
// A single step counts as fully progressed; no steps yields an empty
// indicator with ratio 0.
func DescribeProgress(steps []string, current int) Indicator {
	n := len(steps)
	if n == 0 {
		return Indicator{}
	}

	ind := Indicator{Steps: make([]IndicatorStep, n)}
	for i, label := range steps {
		number := i + 1
		status := StepPending
		switch {
		case current > number:
			status = StepCompleted
		case current == number:
			status = StepCurrent
		}
		ind.Steps[i] = IndicatorStep{Number: number, Label: label, Status: status}
	}

	if n == 1 {
		ind.Ratio = 1
		return ind
	}
	ind.Ratio = float64(current-1) / float64(n-1)
	if ind.Ratio < 0 {
		ind.Ratio = 0
	}
	if ind.Ratio > 1 {
		ind.Ratio = 1
	}
	return ind
}

var (
	styleStepCompleted = lipgloss.NewStyle().Foreground(colorGreen)
	styleStepCurrent   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleStepPending   = lipgloss.NewStyle().Foreground(colorOverlay0)
	styleBarFilled     = lipgloss.NewStyle().Foreground(colorPrimary)
	styleBarEmpty      = lipgloss.NewStyle().Foreground(colorSurface2)
)

// RenderProgress draws the markers, labels and a bar of the given width.
func RenderProgress(ind Indicator, width int) string {
	if len(ind.Steps) == 0 {
		return ""
	}

	markers := make([]string, 0, len(ind.Steps))
	for _, s := range ind.Steps {
		var marker string
		switch s.Status {
		case StepCompleted:
			marker = styleStepCompleted.Render("✓ " + s.Label)
		case StepCurrent:
			marker = styleStepCurrent.Render(fmt.Sprintf("%d %s", s.Number, s.Label))
		default:
			marker = styleStepPending.Render(fmt.Sprintf("%d %s", s.Number, s.Label))
		}
		markers = append(markers, marker)
	}
	line := strings.Join(markers, styleStepPending.Render("  ›  "))

	if width < 1 {
		return line
	}
	filled := int(ind.Ratio * float64(width))
	bar := styleBarFilled.Render(strings.Repeat("━", filled)) +
		styleBarEmpty.Render(strings.Repeat("─", width-filled))

	return lipgloss.JoinVertical(lipgloss.Left, line, bar)
}
