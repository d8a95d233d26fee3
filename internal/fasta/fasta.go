package fasta

// Package fasta parses and writes FASTA formatted peptoid sequences. Residues
// are multi-character codes (e.g. "PRO", "601") separated by a delimiter or by
// whitespace, so a sequence is a list of tokens rather than a string of
// letters.

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// DefaultDelimiter separates residue codes within a sequence line.
const DefaultDelimiter = "-"

// Record represents a single parsed FASTA entry.
type Record struct {
	Label    string
	Residues []string
}

// Len returns the number of residue codes (gaps included).
func (r Record) Len() int {
	return len(r.Residues)
}

// Policy decides what the parser does with malformed entries.
type Policy int

const (
	// Lenient skips malformed content and reports it as a warning.
	Lenient Policy = iota
	// Strict fails on the first malformed entry.
	Strict
)

func (p Policy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParsePolicy maps "strict"/"lenient" to a Policy. Anything else is lenient.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "strict") {
		return Strict
	}
	return Lenient
}

// Parser turns FASTA text into records.
type Parser struct {
	// Delimiter separates residue codes in addition to whitespace.
	Delimiter string
	Policy    Policy
}

// DefaultParser returns a lenient parser using the default delimiter.
func DefaultParser() *Parser {
	return &Parser{Delimiter: DefaultDelimiter, Policy: Lenient}
}

// Result holds parsed records and any recoverable problems found on the way.
type Result struct {
	Records  []Record
	Warnings []Warning
}

// entry is a raw header plus its sequence lines.
type entry struct {
	line   int
	header string
	lines  []string
}

// ParseString is a convenience wrapper around Parse.
func (p *Parser) ParseString(text string) (*Result, error) {
	return p.Parse(strings.NewReader(text))
}

// Parse reads FASTA records from r. Lines whose first non-blank character is
// '>' start a new record; following lines are tokenized and concatenated.
// Under the Lenient policy malformed content is skipped and reported in
// Result.Warnings. Under Strict the first problem is returned as a
// *ParseError.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	entries, warnings, err := scan(r)
	if err != nil {
		return nil, err
	}
	res := &Result{Warnings: warnings}

	for i, e := range entries {
		label := strings.TrimSpace(e.header)
		if label == "" {
			label = placeholderLabel(i)
			res.Warnings = append(res.Warnings, Warning{
				Line:    e.line,
				Kind:    KindEmptyLabel,
				Message: "header has no label; using " + label,
			})
		}
		var residues []string
		for _, l := range e.lines {
			residues = append(residues, p.tokenize(l)...)
		}
		if len(residues) == 0 {
			res.Warnings = append(res.Warnings, Warning{
				Line:    e.line,
				Kind:    KindEmptyRecord,
				Message: "record " + label + " has no residues; skipped",
			})
			continue
		}
		res.Records = append(res.Records, Record{Label: label, Residues: residues})
	}

	if p.Policy == Strict && len(res.Warnings) > 0 {
		w := res.Warnings[0]
		return nil, &ParseError{Warning: w}
	}
	return res, nil
}

// scan splits the input into raw entries. Text before the first header is
// reported as a warning and dropped.
func scan(r io.Reader) ([]entry, []Warning, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		entries  []entry
		warnings []Warning
		current  *entry
		lineNo   int
	)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			entries = append(entries, entry{line: lineNo, header: line[1:]})
			current = &entries[len(entries)-1]
			continue
		}
		if current == nil {
			warnings = append(warnings, Warning{
				Line:    lineNo,
				Kind:    KindOrphanText,
				Message: "text before the first '>' header ignored",
			})
			continue
		}
		current.lines = append(current.lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return entries, warnings, nil
}

// tokenize splits a sequence line on whitespace and the delimiter.
func (p *Parser) tokenize(line string) []string {
	fields := strings.Fields(line)
	if p.Delimiter == "" {
		return fields
	}
	var out []string
	for _, f := range fields {
		for _, tok := range strings.Split(f, p.Delimiter) {
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

func placeholderLabel(i int) string {
	return "seq" + strconv.Itoa(i+1)
}
