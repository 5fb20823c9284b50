package log

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitWritesComponentAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "run.log")
	Init(Options{Level: "debug", Writer: &buf, File: file})
	defer func() {
		_ = Close()
		Init(Options{Writer: &bytes.Buffer{}})
	}()

	WithOperation(WithComponent("director"), "parse").Debug("dropped reference", slog.Int("element", 9))

	out := buf.String()
	if !strings.Contains(out, "component=director") || !strings.Contains(out, "op=parse") {
		t.Errorf("console output missing attributes: %q", out)
	}
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"element":9`) {
		t.Errorf("file output missing record: %s", data)
	}
}
