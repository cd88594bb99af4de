package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("post submit hooks", func(t *testing.T) {
		dir := t.TempDir()
		content := "version: 1\nhooks:\n  post_submit:\n    - command: echo hi\n      timeout: 5\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

		cfg, err := LoadConfig(dir)
		require.NoError(t, err)
		require.Len(t, cfg.Hooks.PostSubmit, 1)
		assert.Equal(t, "echo hi", cfg.Hooks.PostSubmit[0].Command)
		assert.Equal(t, 5, cfg.Hooks.PostSubmit[0].Timeout)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("hooks: ["), 0644))
		_, err := LoadConfig(dir)
		assert.Error(t, err)
	})
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{ID: "abc", Reference: "Jane Doe", Location: "intake_submissions#3", PaymentDate: "2025-03-14"}

	tests := []struct {
		name     string
		hook     *HookConfig
		expected string
	}{
		{"nil hook", nil, ""},
		{"empty command", &HookConfig{}, ""},
		{"placeholders", &HookConfig{Command: "echo {{id}} {{location}}"}, "abc intake_submissions#3\n"},
		{"environment", &HookConfig{Command: `echo "$INTAKE_SUBMISSION_REFERENCE"`}, "Jane Doe\n"},
		{"payload on stdin", &HookConfig{Command: "cat"}, `{"id":"abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Execute(ctx, tt.hook, workDir, vars, []byte(`{"id":"abc"}`))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestExecute_StudentInputIsNotRunByShell(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	vars := Variables{
		ID:          "abc",
		Reference:   "Jane $(touch " + marker + ")",
		PaymentDate: "`touch " + marker + "`",
	}

	for _, command := range []string{
		"echo {{reference}} {{payment_date}}",
		`echo "$INTAKE_SUBMISSION_REFERENCE" "$INTAKE_SUBMISSION_PAYMENT_DATE"`,
	} {
		_, err := Execute(context.Background(), &HookConfig{Command: command}, dir, vars, nil)
		require.NoError(t, err)
		_, statErr := os.Stat(marker)
		assert.True(t, os.IsNotExist(statErr), "command %q ran student input", command)
	}

	out, err := Execute(context.Background(), &HookConfig{Command: `echo "$INTAKE_SUBMISSION_REFERENCE"`}, dir, vars, nil)
	require.NoError(t, err)
	assert.Equal(t, "Jane $(touch "+marker+")\n", out)
}

func TestExpandVariables_QuotesValues(t *testing.T) {
	got := expandVariables("echo {{id}} {{location}} {{reference}}", Variables{
		ID:        "abc",
		Location:  "receipts/o'neil.md",
		Reference: "Jane Doe",
	})
	assert.Equal(t, `echo 'abc' 'receipts/o'\''neil.md' {{reference}}`, got)
}

func TestExecute_FailureIsReported(t *testing.T) {
	out, err := Execute(context.Background(), &HookConfig{Command: "echo oops >&2; exit 3"}, t.TempDir(), Variables{}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "[Hook command failed")
	assert.Contains(t, out, "oops")
}

func TestExecuteAll(t *testing.T) {
	hooks := []*HookConfig{
		{Command: "echo first"},
		{Command: "true"},
		{Command: "echo second"},
	}
	out, err := ExecuteAll(context.Background(), hooks, t.TempDir(), Variables{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond\n", out)
}

func TestExecuteAll_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteAll(ctx, []*HookConfig{{Command: "echo test"}}, t.TempDir(), Variables{}, nil)
	assert.Error(t, err)
}
