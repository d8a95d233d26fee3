// Package logging builds the charmbracelet logger shared by the binaries.
package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects the log destination and level.
type Options struct {
	// File receives a copy of every line when set (opened for append).
	File    string
	Level   string
	Verbose bool
	Prefix  string
	// Out defaults to os.Stderr.
	Out *os.File
	// FileOnly keeps the terminal clean, e.g. under a full-screen UI.
	FileOnly bool
}

// timestampWriter prefixes each flushed line with an RFC3339 timestamp.
type timestampWriter struct {
	w   io.Writer
	buf bytes.Buffer
	mu  sync.Mutex
	now func() time.Time
}

// Write buffers bytes until a newline is found; for each full line, write a timestamped
// line to the underlying writer. Partial lines are kept in the buffer.
func (t *timestampWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, _ := t.buf.Write(p)
	for {
		line, err := t.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			t.buf.Reset()
			t.buf.WriteString(line)
			break
		}
		ts := t.now().Format(time.RFC3339)
		if _, err := t.w.Write([]byte(ts + " " + line)); err != nil {
			return n, err
		}
	}
	return n, nil
}

// terminalWriter wraps an io.Writer and exposes an Fd method so the logger can
// still detect a TTY behind the wrapped writer.
type terminalWriter struct {
	w  io.Writer
	fd uintptr
}

func (tw *terminalWriter) Write(p []byte) (int, error) { return tw.w.Write(p) }

// Fd exposes the underlying file descriptor (e.g., os.Stderr.Fd()).
func (tw *terminalWriter) Fd() uintptr { return tw.fd }

// New returns a logger and a close function for the optional log file. A log
// file that cannot be opened is reported through the returned logger and
// logging continues on the terminal only.
func New(opts Options) (*log.Logger, func() error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	var w io.Writer = out
	if opts.FileOnly {
		w = io.Discard
	}
	fd := out.Fd()
	closeFn := func() error { return nil }

	var openErr error
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		switch {
		case err != nil:
			openErr = err
		case opts.FileOnly:
			w, fd = f, f.Fd()
			closeFn = f.Close
		default:
			w = io.MultiWriter(out, f)
			closeFn = f.Close
		}
	}

	tw := &timestampWriter{w: w, now: time.Now}
	logger := log.New(&terminalWriter{w: tw, fd: fd})
	if opts.Prefix != "" {
		logger.SetPrefix(opts.Prefix)
	}

	level, known := ParseLevel(opts.Level)
	if opts.Verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	if !known {
		logger.Warn("unknown log_level, defaulting to info", "provided", opts.Level)
	}
	if openErr != nil {
		logger.Warn("log_file specified but could not be opened; logging to stderr only", "path", opts.File, "err", openErr)
	}
	return logger, closeFn
}

// ParseLevel maps a config string to a level. Empty means info.
func ParseLevel(s string) (log.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel, true
	case "info", "":
		return log.InfoLevel, true
	case "warn", "warning":
		return log.WarnLevel, true
	case "error":
		return log.ErrorLevel, true
	default:
		return log.InfoLevel, false
	}
}
