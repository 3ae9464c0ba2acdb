package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerHelpers(t *testing.T) {
	t.Run("WithLogger tags every entry", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		child := WithLogger(logger, "service", "plex")

		child.Info("request sent")

		if !strings.Contains(buf.String(), "service=plex") {
			t.Errorf("expected tagged entry, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel gates debug output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Debug("hidden")
		if buf.Len() != 0 {
			t.Fatalf("debug should be suppressed by default, got %q", buf.String())
		}

		SetLogLevel(logger, log.DebugLevel)
		logger.Debug("visible")
		if !strings.Contains(buf.String(), "visible") {
			t.Errorf("expected debug entry after lowering the level, got %q", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}
