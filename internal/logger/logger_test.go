package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&Config{
		Level:       "debug",
		Format:      FormatText,
		Output:      &buf,
		DefaultTags: map[string]any{"test": true},
	})

	logger.Debug("This is a debug message")
	if !strings.Contains(buf.String(), "level=DEBUG") || !strings.Contains(buf.String(), "This is a debug message") {
		t.Errorf("Expected debug message in log output, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "test=true") {
		t.Errorf("Expected default tag in log output, got: %s", buf.String())
	}

	buf.Reset()
	Component(logger, "summarizer").Warn("This is a warning", "chunks", 3)
	out := buf.String()
	if !strings.Contains(out, "component=summarizer") || !strings.Contains(out, "chunks=3") {
		t.Errorf("Expected component and field in log output, got: %s", out)
	}

	buf.Reset()
	jsonLogger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})
	jsonLogger.Debug("hidden")
	jsonLogger.Info("JSON message")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Expected debug message to be filtered at info level, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"level":"INFO"`) || !strings.Contains(buf.String(), `"msg":"JSON message"`) {
		t.Errorf("Expected JSON formatted log, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
