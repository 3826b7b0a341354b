package observability

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_LevelMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		level        string
		debugEnabled bool
	}{
		{name: "debug level", level: "debug", debugEnabled: true},
		{name: "info level", level: "info", debugEnabled: false},
		{name: "empty level defaults to info", level: "", debugEnabled: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tc.level)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if logger == nil {
				t.Fatal("logger should not be nil")
			}

			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debugEnabled {
				t.Fatalf("debug enabled=%v, want=%v", got, tc.debugEnabled)
			}
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("not-a-level")
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
	if logger != nil {
		t.Fatal("expected nil logger for invalid level")
	}
}

func TestCorrelationID_ContextHelpers(t *testing.T) {
	t.Parallel()

	ctx := WithCorrelationID(context.Background(), "cid-123")
	correlationID, ok := CorrelationIDFromContext(ctx)
	if !ok {
		t.Fatal("expected correlation id to exist")
	}
	if correlationID != "cid-123" {
		t.Fatalf("correlation id=%q, want=%q", correlationID, "cid-123")
	}
}

func TestCorrelationID_MissingFromContext(t *testing.T) {
	t.Parallel()

	if _, ok := CorrelationIDFromContext(context.Background()); ok {
		t.Fatal("expected no correlation id on a fresh context")
	}
}
