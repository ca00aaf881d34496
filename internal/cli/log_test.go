package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"off", logOff},
		{"", logOff},
		{"nonsense", logOff},
		{"  info  ", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, logOff)

	logger.Error("should not appear")
	if buf.Len() != 0 {
		t.Errorf("expected no output at off level, got %q", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("expected the attached logger back")
	}

	// Without attachment the default logger is returned, never nil.
	if loggerFromContext(context.Background()) == nil {
		t.Error("expected fallback logger")
	}
}
