package fasta

import (
	"bufio"
	"io"
	"strings"
)

// WriteOptions controls how records are serialized.
type WriteOptions struct {
	// Delimiter joins residue codes. Empty means DefaultDelimiter.
	Delimiter string
	// Columns is the number of residues per line; 0 disables wrapping.
	Columns int
}

// Write serializes records as FASTA. Parsing the output with a parser using
// the same delimiter yields the same records.
func Write(w io.Writer, records []Record, opts WriteOptions) error {
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.WriteString(">" + rec.Label + "\n"); err != nil {
			return err
		}
		for start := 0; start < len(rec.Residues); {
			end := len(rec.Residues)
			if opts.Columns > 0 && start+opts.Columns < end {
				end = start + opts.Columns
			}
			if _, err := bw.WriteString(strings.Join(rec.Residues[start:end], delim) + "\n"); err != nil {
				return err
			}
			start = end
		}
	}
	return bw.Flush()
}

// Format returns records as unwrapped FASTA text.
func Format(records []Record) string {
	var sb strings.Builder
	_ = Write(&sb, records, WriteOptions{})
	return sb.String()
}
