package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for input %q", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for input %q: %v", tt.input, err)
			}
			if !tt.wantErr && got != tt.expected {
				t.Errorf("expected %v, got %v for input %q", tt.expected, got, tt.input)
			}
		})
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New()
	l.SetOutput(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("messages below WARN should be dropped, got %q", output)
	}
	if !strings.Contains(output, "[WARN] warn message") {
		t.Error("warn message should be logged at WARN level")
	}
	if !strings.Contains(output, "[ERROR] error message") {
		t.Error("error message should be logged at WARN level")
	}
}

func TestLogger_EnvVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intake.log")
	t.Setenv("INTAKE_LOG_LEVEL", "debug")
	t.Setenv("INTAKE_LOG_FILE", path)

	l := New()
	if l.level != LevelDebug {
		t.Errorf("expected debug level from env var, got %v", l.level)
	}

	l.Debug("subject %s toggled", "physics")
	if err := l.Close(); err != nil {
		t.Fatalf("unexpected error closing logger: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "subject physics toggled") {
		t.Errorf("log file should contain the message, got %q", content)
	}
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	l := New()
	if err := l.Close(); err != nil {
		t.Errorf("unexpected error closing logger: %v", err)
	}
}

func TestConfigure(t *testing.T) {
	orig := Default
	defer func() { Default = orig }()
	Default = New()

	path := filepath.Join(t.TempDir(), "configured.log")
	if err := Configure("warn", path); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	defer Default.Close()

	Info("hidden")
	Warn("shown %d", 1)

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(string(content), "shown 1") {
		t.Error("warn message should be written")
	}

	if err := Configure("loud", ""); err == nil {
		t.Error("expected error for invalid level")
	}
}
