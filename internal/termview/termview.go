// Package termview renders alignment grids for terminals with lipgloss.
package termview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	tickStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	truncStyle = lipgloss.NewStyle().MaxWidth(CellWidth)
)

// CellWidth is the number of terminal columns per residue cell.
const CellWidth = 5

// Cell renders one grid cell as a colored block.
func Cell(c grid.Cell) string {
	st := lipgloss.NewStyle().
		Width(CellWidth).
		Align(lipgloss.Center).
		Background(lipgloss.Color(c.Color.String()))
	if c.Gap {
		return st.Render("")
	}
	code := c.Code
	if lipgloss.Width(code) > CellWidth {
		code = truncStyle.Render(code)
	}
	return st.Foreground(lipgloss.Color(c.Color.TextColor().String())).Render(code)
}

// Grid renders every row with its label. Columns beyond maxCols are cut;
// maxCols <= 0 renders all of them.
func Grid(g *grid.Grid, maxCols int) string {
	labelW := 0
	for _, r := range g.Rows {
		labelW = max(labelW, lipgloss.Width(r.Label))
	}
	cols := g.Columns
	if maxCols > 0 && maxCols < cols {
		cols = maxCols
	}

	lines := make([]string, 0, len(g.Rows)+1)
	lines = append(lines, strings.Repeat(" ", labelW+1)+ticks(cols))
	for _, r := range g.Rows {
		var sb strings.Builder
		sb.WriteString(labelStyle.Width(labelW + 1).Render(r.Label))
		for _, c := range r.Cells[:cols] {
			sb.WriteString(Cell(c))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// Sequence renders a single row wrapped to width terminal columns.
func Sequence(r grid.Row, width int) string {
	perLine := max(1, width/CellWidth)
	var lines []string
	for start := 0; start < len(r.Cells); start += perLine {
		end := min(start+perLine, len(r.Cells))
		var sb strings.Builder
		for _, c := range r.Cells[start:end] {
			sb.WriteString(Cell(c))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// Legend renders one swatch line per legend entry.
func Legend(entries []palette.LegendEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		sw := lipgloss.NewStyle().Background(lipgloss.Color(e.Color.String())).Render("  ")
		lines = append(lines, sw+" "+e.Property+" "+labelStyle.Render(e.Color.String()))
	}
	return strings.Join(lines, "\n")
}

// Mapping renders the effective color map, one code per line.
func Mapping(m *palette.Mapping) string {
	var lines []string
	for _, e := range m.Entries() {
		sw := lipgloss.NewStyle().Background(lipgloss.Color(e.Color.String())).Render("  ")
		line := sw + " " + e.Code + " " + labelStyle.Render(e.Color.String())
		if e.Property != "" {
			line += " " + e.Property
		}
		lines = append(lines, line)
	}
	lines = append(lines, labelStyle.Render("default "+m.Fallback().String()))
	return strings.Join(lines, "\n")
}

// ticks numbers every fifth column.
func ticks(cols int) string {
	var sb strings.Builder
	for j := 0; j < cols; j++ {
		label := ""
		if j == 0 || (j+1)%5 == 0 {
			label = strconv.Itoa(j + 1)
		}
		sb.WriteString(tickStyle.Width(CellWidth).Align(lipgloss.Center).Render(label))
	}
	return sb.String()
}
