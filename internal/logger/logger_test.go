package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_DoesNotPanic(t *testing.T) {
	Init("debug", "json")
	Init("info", "text")
	Debug("debug message", "k", "v")
	Info("info message")
	Warn("warn message")
	Error("error message", "err", "boom")

	if With("component", "test") == nil {
		t.Error("Expected With to return a logger")
	}
}
