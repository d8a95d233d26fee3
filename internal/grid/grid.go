// Package grid lays parsed sequences out as a colored alignment grid.
package grid

import (
	"errors"

	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
)

// ErrNoRecords is returned when there is nothing to lay out.
var ErrNoRecords = errors.New("grid: no sequences to display")

// DefaultGaps are the tokens drawn as gap cells.
var DefaultGaps = []string{".", "—"}

// Cell is one position of one sequence. Padding and gap cells have an empty
// Code and the mapping's blank color.
type Cell struct {
	Code  string
	Gap   bool
	Color palette.Color
}

// Row is one sequence of the grid.
type Row struct {
	Label string
	Cells []Cell
}

// Grid is the derived alignment view: rows in input order, every row padded
// to Columns cells.
type Grid struct {
	Rows    []Row
	Columns int
	Legend  []palette.LegendEntry
}

// Builder builds grids; Gaps lists the tokens treated as alignment gaps.
type Builder struct {
	Gaps []string
}

// Build lays out records with the default gap tokens.
func Build(records []fasta.Record, m *palette.Mapping) (*Grid, error) {
	b := Builder{Gaps: DefaultGaps}
	return b.Build(records, m)
}

// Build lays out records: one row per record, MaxLength columns, residue cells
// colored through m and short rows padded with blank cells.
func (b Builder) Build(records []fasta.Record, m *palette.Mapping) (*Grid, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if m == nil {
		m = palette.DefaultMapping()
	}
	cols := MaxLength(records)
	blank := Cell{Gap: true, Color: m.Blank()}

	g := &Grid{Rows: make([]Row, len(records)), Columns: cols, Legend: m.Legend()}
	for i, rec := range records {
		cells := make([]Cell, cols)
		for j := range cells {
			if j >= len(rec.Residues) || b.isGap(rec.Residues[j]) {
				cells[j] = blank
				continue
			}
			code := rec.Residues[j]
			cells[j] = Cell{Code: code, Color: m.Lookup(code)}
		}
		g.Rows[i] = Row{Label: rec.Label, Cells: cells}
	}
	return g, nil
}

func (b Builder) isGap(code string) bool {
	for _, g := range b.Gaps {
		if code == g {
			return true
		}
	}
	return false
}

// MaxLength is the longest residue list across records.
func MaxLength(records []fasta.Record) int {
	n := 0
	for _, r := range records {
		n = max(n, len(r.Residues))
	}
	return n
}

// Codes returns the distinct residue codes of the grid in first-seen order.
func (g *Grid) Codes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range g.Rows {
		for _, c := range row.Cells {
			if c.Gap || seen[c.Code] {
				continue
			}
			seen[c.Code] = true
			out = append(out, c.Code)
		}
	}
	return out
}

// Labels returns the row labels in order.
func (g *Grid) Labels() []string {
	out := make([]string, len(g.Rows))
	for i, r := range g.Rows {
		out[i] = r.Label
	}
	return out
}
