package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for in, expected := range testCases {
		if got := ParseLevel(in); got != expected {
			t.Errorf("ParseLevel(%q): expected %v, but got %v", in, expected, got)
		}
	}
}

func TestNew(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&buf, "info", "json")
		l.Debug("hidden")
		l.Info("card added", "id", "abc")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Expected one JSON log line, but got %q: %v", buf.String(), err)
		}
		if entry["msg"] != "card added" || entry["id"] != "abc" {
			t.Errorf("Unexpected log entry: %v", entry)
		}
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "warn", "text")
		slog.Info("hidden")
		slog.Warn("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") {
			t.Errorf("Unexpected text output: %q", out)
		}
	})
}
