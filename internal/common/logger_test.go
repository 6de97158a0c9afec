package common

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevelConversions(t *testing.T) {
	tests := []struct {
		level    LogLevel
		name     string
		expected slog.Level
	}{
		{LogLevelError, "error", slog.LevelError},
		{LogLevelWarn, "warn", slog.LevelWarn},
		{LogLevelInfo, "info", slog.LevelInfo},
		{LogLevelDebug, "debug", slog.LevelDebug},
		{LogLevel(42), "info", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.level.String() != tt.name {
				t.Fatalf("String() = %q, want %q", tt.level.String(), tt.name)
			}
			if tt.level.ToSlogLevel() != tt.expected {
				t.Fatalf("ToSlogLevel() = %v, want %v", tt.level.ToSlogLevel(), tt.expected)
			}
		})
	}
}

func TestTextLogger_ContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, LogLevelDebug)

	logger.WithComponent("executor").WithStep("deploy-check").WithRequest("GET", "http://example.test").WithRun("r-1").Info("sending")
	out := buf.String()
	for _, want := range []string{"component=executor", "step=deploy-check", "method=GET", "url=http://example.test", "run_id=r-1", "msg=sending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if logger.WithStep("") != logger {
		t.Fatalf("empty step name should return the same logger")
	}
	if logger.Level() != LogLevelDebug {
		t.Fatalf("unexpected level %v", logger.Level())
	}
}

func TestTextLogger_MasksSensitiveAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, LogLevelInfo)
	logger.Info("auth configured", "auth_user", "bob", "auth_password", "hunter2")
	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("password leaked into log output: %q", out)
	}
	if !strings.Contains(out, "auth_user=bob") {
		t.Fatalf("expected user in output: %q", out)
	}
}

func TestTextLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, LogLevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected filtering result: %q", out)
	}
}

func TestGlobalLogger(t *testing.T) {
	orig := GetLogger()
	defer SetDefaultLogger(orig)

	var buf bytes.Buffer
	SetDefaultLogger(NewTextLogger(&buf, LogLevelWarn))
	GetLogger().Info("quiet")
	LogWarn("warn message", "k", "v")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "warn message") || !strings.Contains(out, "k=v") {
		t.Fatalf("unexpected output %q", out)
	}
}
