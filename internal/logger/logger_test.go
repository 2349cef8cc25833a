package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/seenimoa/neuroquant/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, "test", &buf); err != nil {
		t.Fatalf("InitWithWriter error: %v", err)
	}

	Info(context.Background(), "analysis done", "ticker", "NVDA")
	Debug(context.Background(), "hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "analysis done" || rec["ticker"] != "NVDA" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestOperationWithoutTracing(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(config.LoggingConfig{Level: "debug", Format: "text"}, "test", &buf); err != nil {
		t.Fatalf("InitWithWriter error: %v", err)
	}

	op := StartOperation(context.Background(), "forecast")
	if op.Context() == nil {
		t.Fatal("operation context is nil")
	}
	op.End("steps", 5)
	if !strings.Contains(buf.String(), "operation=forecast") {
		t.Errorf("expected operation name in log, got %q", buf.String())
	}

	buf.Reset()
	op = StartOperation(context.Background(), "sentiment")
	op.EndWithError(errors.New("boom"))
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error in log, got %q", buf.String())
	}
}

func TestShutdownWithoutTracer(t *testing.T) {
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
