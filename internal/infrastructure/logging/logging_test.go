package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		verbose bool
		want    zapcore.Level
	}{
		{"", "json", false, zapcore.InfoLevel},
		{"warn", "json", false, zapcore.WarnLevel},
		{"ERROR", "console", false, zapcore.ErrorLevel},
		{"error", "json", true, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		logger, err := New(tt.level, tt.format, tt.verbose)
		if err != nil {
			t.Fatalf("New(%q, %q): %v", tt.level, tt.format, err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("New(%q) does not enable %s", tt.level, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("New(%q) enables %s", tt.level, tt.want-1)
		}
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("loud", "json", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
