package fasta

import "fmt"

// WarningKind classifies a recoverable parse problem.
type WarningKind string

const (
	KindOrphanText  WarningKind = "orphan_text"
	KindEmptyRecord WarningKind = "empty_record"
	KindEmptyLabel  WarningKind = "empty_label"
)

// Warning describes malformed input that was skipped or patched up.
type Warning struct {
	Line    int
	Kind    WarningKind
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// ParseError is returned by a Strict parser for the first malformed entry.
type ParseError struct {
	Warning Warning
}

func (e *ParseError) Error() string {
	return "fasta: " + e.Warning.String()
}
