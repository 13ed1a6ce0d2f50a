package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	l.With(FieldRequestID, "r1").WithComponent(ComponentGateway).Info("call", FieldPath, "/api/expenses")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec[FieldComponent] != ComponentGateway {
		t.Fatalf("component = %v", rec[FieldComponent])
	}
	if rec[FieldRequestID] != "r1" {
		t.Fatalf("request id lost: %v", rec)
	}
	if strings.Count(buf.String(), `"component"`) != 1 {
		t.Fatalf("component duplicated: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "x": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("%q: got %v want %v", in, got, want)
		}
	}
}

func TestFromContextDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatal("expected stored logger")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}
