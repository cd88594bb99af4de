package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/studentconnect/intake/internal/form"
)

func fieldNames() []string {
	names := make([]string, len(form.PersonalFields))
	for i, f := range form.PersonalFields {
		names[i] = string(f)
	}
	return names
}

// registerTools adds the form tools to the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("form-state",
			mcp.WithDescription("Show the current step, entered values, gate status and derived review"),
		),
		s.handleFormState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-field",
			mcp.WithDescription("Set one personal information field"),
			mcp.WithString("field", mcp.Required(),
				mcp.Description("Field name"),
				mcp.Enum(fieldNames()...),
			),
			mcp.WithString("value", mcp.Required(),
				mcp.Description("New value (empty string clears the field)"),
			),
		),
		s.handleSetField,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("toggle-subject",
			mcp.WithDescription("Select a subject, or deselect it if already selected"),
			mcp.WithString("subject", mcp.Required(),
				mcp.Description("Subject ID from the catalog"),
			),
		),
		s.handleToggleSubject,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-mark",
			mcp.WithDescription("Set the current or target mark (percentage) for a subject"),
			mcp.WithString("subject", mcp.Required(),
				mcp.Description("Subject ID"),
			),
			mcp.WithString("which", mcp.Required(),
				mcp.Description("Which mark to set"),
				mcp.Enum(string(form.MarkCurrent), string(form.MarkTarget)),
			),
			mcp.WithString("value", mcp.Required(),
				mcp.Description("Mark as a percentage, e.g. 65"),
			),
		),
		s.handleSetMark,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-payment-date",
			mcp.WithDescription("Set the date the student will pay, no earlier than today"),
			mcp.WithString("date", mcp.Required(),
				mcp.Description("Date as YYYY-MM-DD (empty string clears it)"),
			),
		),
		s.handleSetPaymentDate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set-assessment-subject",
			mcp.WithDescription("Choose the subject for the entry assessment"),
			mcp.WithString("subject", mcp.Required(),
				mcp.Description("Subject ID (empty string clears it)"),
			),
		),
		s.handleSetAssessmentSubject,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("next-step",
			mcp.WithDescription("Move to the next step if the current step is complete"),
		),
		s.handleNextStep,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("previous-step",
			mcp.WithDescription("Move back one step; entered data is kept"),
		),
		s.handlePreviousStep,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("submit",
			mcp.WithDescription("Submit the form from the review step"),
		),
		s.handleSubmit,
	)
}
