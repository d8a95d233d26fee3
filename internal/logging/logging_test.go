package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestTimestampWriterBuffersPartialLines(t *testing.T) {
	var out bytes.Buffer
	fixed := time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)
	tw := &timestampWriter{w: &out, now: func() time.Time { return fixed }}

	if _, err := tw.Write([]byte("hello ")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("partial line flushed early: %q", out.String())
	}
	if _, err := tw.Write([]byte("world\nsecond\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := "2025-03-13T10:00:00Z hello world\n2025-03-13T10:00:00Z second\n"
	if out.String() != want {
		t.Fatalf("got %q, want %q", out.String(), want)
	}
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	term, err := os.Create(filepath.Join(dir, "stderr.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer term.Close()
	logPath := filepath.Join(dir, "app.log")

	logger, closeFn := New(Options{File: logPath, Level: "warn", Out: term})
	logger.Info("hidden")
	logger.Warn("shown", "records", 3)
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "hidden") {
		t.Fatalf("info line written at warn level: %q", got)
	}
	if !strings.Contains(got, "shown") || !strings.Contains(got, "records=3") {
		t.Fatalf("warn line missing: %q", got)
	}
}

func TestNewUnopenableFile(t *testing.T) {
	term, err := os.Create(filepath.Join(t.TempDir(), "stderr.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer term.Close()
	logger, closeFn := New(Options{File: filepath.Join(t.TempDir(), "no", "such", "dir.log"), Out: term})
	if logger == nil {
		t.Fatalf("logger should still be returned")
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close should be a no-op: %v", err)
	}
	data, _ := os.ReadFile(term.Name())
	if !strings.Contains(string(data), "could not be opened") {
		t.Fatalf("expected a warning about the log file, got %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  log.Level
		known bool
	}{
		{"debug", log.DebugLevel, true},
		{"", log.InfoLevel, true},
		{"WARNING", log.WarnLevel, true},
		{"error", log.ErrorLevel, true},
		{"loud", log.InfoLevel, false},
	}
	for _, tt := range tests {
		got, known := ParseLevel(tt.in)
		if got != tt.want || known != tt.known {
			t.Errorf("ParseLevel(%q) = %v,%v want %v,%v", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestVerboseOverridesLevel(t *testing.T) {
	term, err := os.Create(filepath.Join(t.TempDir(), "stderr.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer term.Close()
	logger, _ := New(Options{Level: "error", Verbose: true, Out: term})
	if logger.GetLevel() != log.DebugLevel {
		t.Fatalf("verbose should force debug, got %v", logger.GetLevel())
	}
}

func TestFileOnly(t *testing.T) {
	dir := t.TempDir()
	term, err := os.Create(filepath.Join(dir, "stderr.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer term.Close()
	logPath := filepath.Join(dir, "tui.log")

	logger, closeFn := New(Options{File: logPath, FileOnly: true, Out: term})
	logger.Info("loaded", "records", 4)
	_ = closeFn()

	if data, _ := os.ReadFile(term.Name()); len(data) != 0 {
		t.Fatalf("terminal should stay clean, got %q", data)
	}
	if data, _ := os.ReadFile(logPath); !strings.Contains(string(data), "records=4") {
		t.Fatalf("file missing line: %q", data)
	}
}
