package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewAddsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Output: &buf, Service: "checkout"})

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	log.Warn("kept", "session_id", "abc")
	m := decode(t, &buf)
	if m["service"] != "checkout" || m["session_id"] != "abc" || m["msg"] != "kept" {
		t.Errorf("unexpected record %v", m)
	}
}

func TestContextAttrsReachRecords(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf}).With("component", "bookings")

	ctx := ContextWithAttrs(context.Background(), "request_id", "req-1")
	ctx = ContextWithAttrs(ctx, "user_id", "u-9")
	log.InfoContext(ctx, "booking created")

	m := decode(t, &buf)
	for k, want := range map[string]string{"request_id": "req-1", "user_id": "u-9", "component": "bookings"} {
		if m[k] != want {
			t.Errorf("%s = %v, want %s", k, m[k], want)
		}
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "TEXT", Output: &buf}).Info("hello", "plan", "day-pass")
	if !strings.Contains(buf.String(), "plan=day-pass") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{"debug": "DEBUG", "WARN": "WARN", "error": "ERROR", "": "INFO", "verbose": "INFO"}
	for in, want := range tests {
		if got := ParseLevel(in).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing to see")
}
