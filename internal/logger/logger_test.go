package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) should fail")
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "info", "json")
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}

	log.Debug("hidden")
	log.Warn("window clamped", "preset", "covid2020")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "window clamped" || entry["preset"] != "covid2020" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["level"] != "warn" {
		t.Errorf("level: got %v, want warn", entry["level"])
	}
}

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "debug", "text")
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}
	log.Debug("fetching", "series", "DGS10")
	if !strings.Contains(buf.String(), "fetching") || !strings.Contains(buf.String(), "DGS10") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New("loud", "text"); err == nil {
		t.Error("New with bad level should fail")
	}
	log, sync, err := New("info", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log == nil || sync == nil {
		t.Error("New returned nil logger or sync func")
	}
}

func TestOrDiscard(t *testing.T) {
	l := OrDiscard(nil)
	if l == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l.Info("dropped")
}
