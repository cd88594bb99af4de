package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentconnect/intake/internal/catalog"
	"github.com/studentconnect/intake/internal/form"
	"github.com/studentconnect/intake/internal/receipt"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// setupTestServer creates a server around a fresh controller with a fixed
// clock. Submissions are appended to the returned slice.
func setupTestServer(t *testing.T, submitErr error, opts ...form.Option) (*Server, *[]form.Submission) {
	t.Helper()
	var subs []form.Submission
	submitter := form.SubmitterFunc(func(_ context.Context, sub form.Submission) (form.Ack, error) {
		subs = append(subs, sub)
		if submitErr != nil {
			return form.Ack{}, submitErr
		}
		return form.Ack{ID: sub.ID, Reference: sub.Review.PaymentReference, SubmittedAt: sub.SubmittedAt}, nil
	})

	cat := catalog.New([]catalog.Subject{
		{ID: "mathematics", Name: "Mathematics", Schedule: "Sat 08:00"},
		{ID: "physics", Name: "Physics", Schedule: "Sat 10:30"},
	})
	opts = append([]form.Option{
		form.WithSubmitter(submitter),
		form.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	ctrl := form.NewController(cat, opts...)

	return New(ctrl, receipt.Details{Account: catalog.DefaultPaymentAccount(), Venue: "Hall A"}), &subs
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, h handler, name string, args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return extractText(result)
}

// decodeView parses the JSON document that follows the first line of a
// mutating tool's output, or the whole text for form-state.
func decodeView(t *testing.T, text string) stateView {
	t.Helper()
	start := strings.Index(text, "{")
	require.GreaterOrEqual(t, start, 0, "no JSON in %q", text)
	var v stateView
	require.NoError(t, json.Unmarshal([]byte(text[start:]), &v))
	return v
}

func TestHandleFormState_Initial(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	v := decodeView(t, call(t, srv.handleFormState, "form-state", nil))
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, "Personal Info", v.StepLabel)
	assert.False(t, v.StepValid)
	assert.False(t, v.CanAdvance)
	assert.Equal(t, []string{"firstName", "lastName", "email", "phone", "school"}, v.Missing)
}

func TestHandleSetField(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	text := call(t, srv.handleSetField, "set-field", map[string]any{"field": "firstName", "value": "Jane"})
	assert.True(t, strings.HasPrefix(text, "Set firstName."))
	v := decodeView(t, text)
	assert.Equal(t, "Jane", v.State.Personal.FirstName)
	assert.NotContains(t, v.Missing, "firstName")

	t.Run("unknown field", func(t *testing.T) {
		text := call(t, srv.handleSetField, "set-field", map[string]any{"field": "age", "value": "17"})
		assert.Contains(t, text, "error: unknown field")
		assert.Contains(t, text, "guardianContact")
	})

	t.Run("missing value", func(t *testing.T) {
		text := call(t, srv.handleSetField, "set-field", map[string]any{"field": "email"})
		assert.Equal(t, "error: missing or invalid 'value' parameter", text)
	})

	t.Run("no arguments", func(t *testing.T) {
		text := call(t, srv.handleSetField, "set-field", nil)
		assert.Equal(t, "error: missing or invalid 'field' parameter", text)
	})
}

func TestHandleToggleSubject(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	text := call(t, srv.handleToggleSubject, "toggle-subject", map[string]any{"subject": "physics"})
	assert.True(t, strings.HasPrefix(text, "Selected physics."))
	assert.Equal(t, []string{"physics"}, decodeView(t, text).State.Subjects)

	text = call(t, srv.handleToggleSubject, "toggle-subject", map[string]any{"subject": "physics"})
	assert.True(t, strings.HasPrefix(text, "Deselected physics."))
	assert.Empty(t, decodeView(t, text).State.Subjects)

	text = call(t, srv.handleToggleSubject, "toggle-subject", map[string]any{"subject": "astrology"})
	assert.Contains(t, text, `error: unknown subject "astrology"`)
	assert.Contains(t, text, "mathematics, physics")
}

func TestHandleSetMark(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	text := call(t, srv.handleSetMark, "set-mark", map[string]any{"subject": "physics", "which": "currentMarks", "value": "60"})
	assert.Contains(t, text, "not selected")
	v := decodeView(t, text)
	require.NotNil(t, v.State.Marks["physics"])
	assert.Equal(t, "60", v.State.Marks["physics"].Current)

	text = call(t, srv.handleSetMark, "set-mark", map[string]any{"subject": "physics", "which": "bestMarks", "value": "60"})
	assert.Contains(t, text, "error: unknown field")
}

func TestHandleSetPaymentDate(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	text := call(t, srv.handleSetPaymentDate, "set-payment-date", map[string]any{"date": "2025-03-09"})
	assert.Equal(t, "error: "+form.ErrPastDate.Error(), text)

	text = call(t, srv.handleSetPaymentDate, "set-payment-date", map[string]any{"date": "14/03/2025"})
	assert.Equal(t, "error: "+form.ErrInvalidDate.Error(), text)

	text = call(t, srv.handleSetPaymentDate, "set-payment-date", map[string]any{"date": "2025-03-10"})
	v := decodeView(t, text)
	assert.Equal(t, "2025-03-10", v.State.PaymentDate)
	assert.Equal(t, "10 March 2025", v.Review.PaymentDateDisplay)
}

func TestHandleNavigation(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	text := call(t, srv.handlePreviousStep, "previous-step", nil)
	assert.True(t, strings.HasPrefix(text, "Already on the first step."))

	text = call(t, srv.handleNextStep, "next-step", nil)
	assert.True(t, strings.HasPrefix(text, "Step 1 (Personal Info) is incomplete"))
	assert.Equal(t, 1, decodeView(t, text).Step)

	for field, value := range map[string]string{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@example.com",
		"phone": "0771234567", "school": "Royal College",
	} {
		call(t, srv.handleSetField, "set-field", map[string]any{"field": field, "value": value})
	}

	text = call(t, srv.handleNextStep, "next-step", nil)
	assert.True(t, strings.HasPrefix(text, "Moved to step 2 (Subjects)."))

	text = call(t, srv.handlePreviousStep, "previous-step", nil)
	v := decodeView(t, text)
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, "Jane", v.State.Personal.FirstName)
}

// completeSession drives a server to the review step with everything filled.
func completeSession(t *testing.T, srv *Server) {
	t.Helper()
	for _, f := range []struct{ field, value string }{
		{"firstName", "Jane"}, {"lastName", "Doe"}, {"email", "jane@example.com"},
		{"phone", "0771234567"}, {"school", "Royal College"},
	} {
		call(t, srv.handleSetField, "set-field", map[string]any{"field": f.field, "value": f.value})
	}
	call(t, srv.handleNextStep, "next-step", nil)
	call(t, srv.handleToggleSubject, "toggle-subject", map[string]any{"subject": "mathematics"})
	call(t, srv.handleToggleSubject, "toggle-subject", map[string]any{"subject": "physics"})
	call(t, srv.handleNextStep, "next-step", nil)

	text := call(t, srv.handleNextStep, "next-step", nil)
	v := decodeView(t, text)
	require.Equal(t, 3, v.Step)
	assert.ElementsMatch(t, []string{
		"marks.mathematics.currentMarks", "marks.mathematics.targetMarks",
		"marks.physics.currentMarks", "marks.physics.targetMarks",
	}, v.Missing)

	for _, id := range []string{"mathematics", "physics"} {
		call(t, srv.handleSetMark, "set-mark", map[string]any{"subject": id, "which": "currentMarks", "value": "50"})
		call(t, srv.handleSetMark, "set-mark", map[string]any{"subject": id, "which": "targetMarks", "value": "75"})
	}
	text = call(t, srv.handleNextStep, "next-step", nil)
	require.Equal(t, 4, decodeView(t, text).Step)
}

func TestHandleSubmit_FullSession(t *testing.T) {
	srv, subs := setupTestServer(t, nil)

	text := call(t, srv.handleSubmit, "submit", nil)
	assert.Contains(t, text, "error: "+form.ErrNotFinalStep.Error())

	completeSession(t, srv)

	text = call(t, srv.handleSubmit, "submit", nil)
	assert.Contains(t, text, "error: "+form.ErrStepIncomplete.Error())
	assert.Contains(t, decodeView(t, text).Missing, "paymentDate")
	assert.Empty(t, *subs)

	call(t, srv.handleSetPaymentDate, "set-payment-date", map[string]any{"date": "2025-03-14"})
	text = call(t, srv.handleSubmit, "submit", nil)
	require.True(t, strings.HasPrefix(text, "Submitted."), text)
	assert.Contains(t, text, `"reference": "Jane Doe"`)
	assert.Contains(t, text, "**Total:** LKR 800")
	assert.Contains(t, text, "Hall A")

	require.Len(t, *subs, 1)
	sub := (*subs)[0]
	assert.Equal(t, []string{"mathematics", "physics"}, sub.State.Subjects)
	assert.Equal(t, int64(800), sub.Review.TotalCost)
	assert.Equal(t, "14 March 2025", sub.Review.PaymentDateDisplay)

	// Still on the review step afterwards
	v := decodeView(t, call(t, srv.handleFormState, "form-state", nil))
	assert.Equal(t, 4, v.Step)
}

func TestHandleSubmit_RequiredAssessment(t *testing.T) {
	srv, _ := setupTestServer(t, nil, form.WithRequiredAssessment(true))
	completeSession(t, srv)
	call(t, srv.handleSetPaymentDate, "set-payment-date", map[string]any{"date": "2025-03-14"})

	text := call(t, srv.handleSubmit, "submit", nil)
	assert.Contains(t, decodeView(t, text).Missing, "assessmentSubject")

	call(t, srv.handleSetAssessmentSubject, "set-assessment-subject", map[string]any{"subject": "physics"})
	text = call(t, srv.handleSubmit, "submit", nil)
	assert.True(t, strings.HasPrefix(text, "Submitted."), text)
	assert.Contains(t, text, "**Assessment subject:** Physics")
}

func TestHandleSubmit_CollaboratorFailure(t *testing.T) {
	srv, subs := setupTestServer(t, errors.New("stream unavailable"))
	completeSession(t, srv)
	call(t, srv.handleSetPaymentDate, "set-payment-date", map[string]any{"date": "2025-03-14"})

	text := call(t, srv.handleSubmit, "submit", nil)
	assert.Equal(t, "error: submission failed: stream unavailable", text)
	assert.Len(t, *subs, 1)
}

func TestServer_StartStop(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	port, err := srv.Start(context.Background(), 0)
	require.NoError(t, err)
	assert.Greater(t, port, 0)
	assert.Contains(t, srv.URL(), "/mcp")

	_, err = srv.Start(context.Background(), 0)
	assert.Error(t, err)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
}

func TestMissing_MatchesControllerGate(t *testing.T) {
	srv, _ := setupTestServer(t, nil)

	for _, f := range []string{"firstName", "lastName", "email", "phone"} {
		call(t, srv.handleSetField, "set-field", map[string]any{"field": f, "value": "x"})
	}
	text := call(t, srv.handleSetField, "set-field", map[string]any{"field": "school", "value": " "})

	v := decodeView(t, text)
	assert.Empty(t, v.Missing)
	assert.True(t, v.StepValid)
	assert.Equal(t, srv.ctrl.Missing(form.StepPersonal), v.Missing)
}
