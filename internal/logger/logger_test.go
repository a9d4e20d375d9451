package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug level", "debug", "console"},
		{"info level", "info", "console"},
		{"warn level", "warn", "console"},
		{"error level", "error", "console"},
		{"json format", "info", "json"},
		{"uppercase level", "DEBUG", "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.level, tt.format)
			if Log == nil {
				t.Error("expected Log to be initialized")
			}
		})
	}
}

func TestLoggerLevelConstants(t *testing.T) {
	tests := []struct {
		level  string
		expect zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel}, // default case
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			Setup(tt.level, "console")
			got := zerolog.GlobalLevel()
			if got != tt.expect {
				t.Errorf("level %s: expected %v, got %v", tt.level, tt.expect, got)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	Setup("debug", "console")

	// None of these should panic.
	Log.Info("info message", "key", "value")
	Log.Debug("debug message", "n", 8, "precision", "bf16")
	Log.Warn("warn message")
	Log.Error("error message", "err", "boom")
	Log.Info("odd args", "key1", "value1", "orphan_key")
	Log.Info("non-string key", 123, "value")
	Log.Info("nil value", "key", nil)
}

func TestComponent(t *testing.T) {
	Setup("info", "console")

	runner := Log.Component("runner")
	if runner == nil {
		t.Fatal("expected component logger")
	}
	runner.Info("run complete", "algo", "matmul", "rows", 10)

	// Nesting is allowed; the inner tag wins in zerolog's duplicate handling.
	inner := runner.Component("results")
	inner.Info("csv written")
}
