package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Level: "info"}, &buf)
	log.Debug("hidden")
	log.Info("built", "parts", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "built" || rec["parts"] != float64(7) {
		t.Errorf("record = %v", rec)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	BuildLogger(New(Config{Level: "debug"}, &buf), "b-1", 3).Debug("staged")
	out := buf.String()
	if !strings.Contains(out, "build_id=b-1") || !strings.Contains(out, "sheets=3") {
		t.Errorf("output = %q", out)
	}
}

func TestBuildID(t *testing.T) {
	ctx := context.Background()
	if got := BuildID(ctx); got != "" {
		t.Errorf("BuildID(empty) = %q, expected empty", got)
	}
	ctx = WithBuildID(ctx, "abc")
	if got := BuildID(ctx); got != "abc" {
		t.Errorf("BuildID() = %q, expected abc", got)
	}
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Setup(Config{Format: "json", Level: "warn"}, &buf)
	Component("storage").Info("hidden")
	Component("storage").Warn("slow publish")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, `"component":"storage"`) || !strings.Contains(out, "slow publish") {
		t.Errorf("output = %q", out)
	}
}
