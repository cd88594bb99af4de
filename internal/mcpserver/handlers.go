package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/receipt"
)

// stateView is the JSON document returned by form-state and by every
// mutating tool.
type stateView struct {
	Step       int            `json:"step"`
	StepLabel  string         `json:"stepLabel"`
	StepValid  bool           `json:"stepValid"`
	CanAdvance bool           `json:"canAdvance"`
	CanSubmit  bool           `json:"canSubmit"`
	Missing    []string       `json:"missing,omitempty"`
	State      form.FormState `json:"state"`
	Review     form.Review    `json:"review"`
}

// snapshot builds the view. Callers hold formMu.
func (s *Server) snapshot() stateView {
	st := s.ctrl.State()
	return stateView{
		Step:       int(st.Step),
		StepLabel:  st.Step.Label(),
		StepValid:  s.ctrl.IsStepValid(st.Step),
		CanAdvance: s.ctrl.CanAdvance(),
		CanSubmit:  s.ctrl.CanSubmit(),
		Missing:    s.ctrl.Missing(st.Step),
		State:      st,
		Review:     s.ctrl.Review(),
	}
}

// stateResult renders the current state as the tool result, prefixed by msg.
// Callers hold formMu.
func (s *Server) stateResult(msg string) (*mcp.CallToolResult, error) {
	output, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to marshal state: %v", err)), nil
	}
	if msg == "" {
		return mcp.NewToolResultText(string(output)), nil
	}
	return mcp.NewToolResultText(msg + "\n" + string(output)), nil
}

// stringArg extracts a string argument. Present-but-empty is allowed.
func stringArg(args map[string]any, key string) (string, bool) {
	if args == nil {
		return "", false
	}
	v, ok := args[key].(string)
	return v, ok
}

// handleFormState returns the current state.
func (s *Server) handleFormState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.formMu.Lock()
	defer s.formMu.Unlock()
	return s.stateResult("")
}

// handleSetField sets one personal field.
func (s *Server) handleSetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, ok := stringArg(args, "field")
	if !ok || name == "" {
		return mcp.NewToolResultText("error: missing or invalid 'field' parameter"), nil
	}
	value, ok := stringArg(args, "value")
	if !ok {
		return mcp.NewToolResultText("error: missing or invalid 'value' parameter"), nil
	}

	field, err := form.ParseField(name)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v (valid fields: %s)", err, strings.Join(fieldNames(), ", "))), nil
	}

	s.formMu.Lock()
	defer s.formMu.Unlock()
	if err := s.ctrl.SetField(field, value); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return s.stateResult(fmt.Sprintf("Set %s.", field))
}

// handleToggleSubject toggles a catalog subject.
func (s *Server) handleToggleSubject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(request.GetArguments(), "subject")
	if !ok || id == "" {
		return mcp.NewToolResultText("error: missing or invalid 'subject' parameter"), nil
	}

	s.formMu.Lock()
	defer s.formMu.Unlock()
	if !s.ctrl.ToggleSubject(id) {
		ids := make([]string, 0, s.ctrl.Catalog().Len())
		for _, subj := range s.ctrl.Catalog().Subjects() {
			ids = append(ids, subj.ID)
		}
		return mcp.NewToolResultText(fmt.Sprintf("error: unknown subject %q (available: %s)", id, strings.Join(ids, ", "))), nil
	}

	verb := "Deselected"
	if s.ctrl.State().IsSelected(id) {
		verb = "Selected"
	}
	return s.stateResult(fmt.Sprintf("%s %s.", verb, id))
}

// handleSetMark sets one side of a subject's marks.
func (s *Server) handleSetMark(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, ok := stringArg(args, "subject")
	if !ok || id == "" {
		return mcp.NewToolResultText("error: missing or invalid 'subject' parameter"), nil
	}
	which, ok := stringArg(args, "which")
	if !ok {
		return mcp.NewToolResultText("error: missing or invalid 'which' parameter"), nil
	}
	value, ok := stringArg(args, "value")
	if !ok {
		return mcp.NewToolResultText("error: missing or invalid 'value' parameter"), nil
	}

	field, err := form.ParseMarkField(which)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}

	s.formMu.Lock()
	defer s.formMu.Unlock()
	if err := s.ctrl.SetMark(id, field, value); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}

	msg := fmt.Sprintf("Set %s for %s.", field, id)
	if !s.ctrl.State().IsSelected(id) {
		msg += " Note: the subject is not selected, so this mark is kept but not used."
	}
	return s.stateResult(msg)
}

// handleSetPaymentDate sets or clears the payment date.
func (s *Server) handleSetPaymentDate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, ok := stringArg(request.GetArguments(), "date")
	if !ok {
		return mcp.NewToolResultText("error: missing or invalid 'date' parameter"), nil
	}

	s.formMu.Lock()
	defer s.formMu.Unlock()
	if err := s.ctrl.SetPaymentDate(strings.TrimSpace(date)); err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
	}
	return s.stateResult("Payment date updated.")
}

// handleSetAssessmentSubject records the assessment subject.
func (s *Server) handleSetAssessmentSubject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(request.GetArguments(), "subject")
	if !ok {
		return mcp.NewToolResultText("error: missing or invalid 'subject' parameter"), nil
	}

	s.formMu.Lock()
	defer s.formMu.Unlock()
	s.ctrl.SetAssessmentSubject(id)
	return s.stateResult("Assessment subject updated.")
}

// handleNextStep advances when the gate allows it.
func (s *Server) handleNextStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.formMu.Lock()
	defer s.formMu.Unlock()

	if !s.ctrl.Advance() {
		step := s.ctrl.Step()
		if step == form.LastStep {
			return s.stateResult("Already on the last step; use submit.")
		}
		return s.stateResult(fmt.Sprintf("Step %d (%s) is incomplete; see 'missing'.", step, step.Label()))
	}
	step := s.ctrl.Step()
	return s.stateResult(fmt.Sprintf("Moved to step %d (%s).", step, step.Label()))
}

// handlePreviousStep moves back one step.
func (s *Server) handlePreviousStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.formMu.Lock()
	defer s.formMu.Unlock()

	if !s.ctrl.Retreat() {
		return s.stateResult("Already on the first step.")
	}
	step := s.ctrl.Step()
	return s.stateResult(fmt.Sprintf("Moved to step %d (%s).", step, step.Label()))
}

// handleSubmit submits the form and returns the acknowledgement and receipt.
func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.formMu.Lock()
	defer s.formMu.Unlock()

	ack, err := s.ctrl.Submit(ctx)
	if err != nil {
		var subErr *form.SubmissionError
		switch {
		case errors.Is(err, form.ErrNotFinalStep), errors.Is(err, form.ErrStepIncomplete):
			return s.stateResult(fmt.Sprintf("error: %v", err))
		case errors.As(err, &subErr):
			return mcp.NewToolResultText(fmt.Sprintf("error: submission failed: %v", subErr.Err)), nil
		default:
			return mcp.NewToolResultText(fmt.Sprintf("error: %v", err)), nil
		}
	}

	output, err := json.MarshalIndent(ack, "", "  ")
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("error: failed to marshal acknowledgement: %v", err)), nil
	}

	var b strings.Builder
	b.WriteString("Submitted.\n")
	b.Write(output)
	b.WriteString("\n\n")
	b.WriteString(receipt.Markdown(s.ctrl.Review(), s.details))
	return mcp.NewToolResultText(b.String()), nil
}
