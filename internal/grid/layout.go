package grid

import "image"

// LayoutOptions bounds the figure geometry. Zero fields take defaults.
type LayoutOptions struct {
	CellSize  int // preferred cell edge in px
	MinCell   int // cells never shrink below this
	MaxWidth  int // target upper bound for the figure width
	MinHeight int
	Title     string
}

// DefaultLayoutOptions matches the export geometry of the original tool:
// 43px cells and a 430px minimum height.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{
		CellSize:  43,
		MinCell:   14,
		MaxWidth:  4000,
		MinHeight: 430,
		Title:     "MSA Plot",
	}
}

func (o LayoutOptions) withDefaults() LayoutOptions {
	d := DefaultLayoutOptions()
	if o.CellSize <= 0 {
		o.CellSize = d.CellSize
	}
	if o.MinCell <= 0 {
		o.MinCell = d.MinCell
	}
	if o.MinCell > o.CellSize {
		o.MinCell = o.CellSize
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = d.MaxWidth
	}
	if o.MinHeight <= 0 {
		o.MinHeight = d.MinHeight
	}
	return o
}

// Layout is the pixel geometry of a rendered grid. It depends on the grid's
// size: wide alignments get narrower cells, long labels get a wider gutter.
type Layout struct {
	Title      string
	CellWidth  int
	CellHeight int
	// Left/Top locate the first cell; Right/Bottom are the remaining margins.
	Left, Top     int
	Right, Bottom int
	LegendTop     int
	LegendRows    int
	FontSize      int
	LabelFontSize int
	Width         int
	Height        int
}

const (
	marginTop    = 100
	marginRight  = 88
	marginBottom = 88
	minGutter    = 134
	legendRowH   = 22
	legendPerRow = 4
	// approximate advance of one label glyph at LabelFontSize
	labelCharW = 8
)

// NewLayout computes the layout of g.
func NewLayout(g *Grid, opts LayoutOptions) Layout {
	opts = opts.withDefaults()
	rows, cols := len(g.Rows), g.Columns

	longest := 0
	for _, r := range g.Rows {
		longest = max(longest, len([]rune(r.Label)))
	}
	left := max(minGutter, longest*labelCharW+24)

	cell := opts.CellSize
	if cols > 0 {
		fit := (opts.MaxWidth - left - marginRight) / cols
		if fit < cell {
			cell = max(fit, opts.MinCell)
		}
	}

	legendRows := (len(g.Legend) + legendPerRow - 1) / legendPerRow
	gridBottom := marginTop + rows*cell
	bottom := marginBottom + legendRows*legendRowH

	l := Layout{
		Title:         opts.Title,
		CellWidth:     cell,
		CellHeight:    cell,
		Left:          left,
		Top:           marginTop,
		Right:         marginRight,
		Bottom:        bottom,
		LegendTop:     gridBottom + 48,
		LegendRows:    legendRows,
		FontSize:      clamp(cell*9/43, 6, 13),
		LabelFontSize: 13,
		Width:         left + cols*cell + marginRight,
		Height:        max(opts.MinHeight, gridBottom+bottom),
	}
	return l
}

// CellRect is the rectangle of cell (row, col).
func (l Layout) CellRect(row, col int) image.Rectangle {
	x := l.Left + col*l.CellWidth
	y := l.Top + row*l.CellHeight
	return image.Rect(x, y, x+l.CellWidth, y+l.CellHeight)
}

// CellCenter is the center point of cell (row, col).
func (l Layout) CellCenter(row, col int) image.Point {
	r := l.CellRect(row, col)
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

// LegendSlot is the top-left corner of legend entry i.
func (l Layout) LegendSlot(i int) image.Point {
	colW := max(160, (l.Width-l.Left-l.Right)/legendPerRow)
	return image.Pt(l.Left+(i%legendPerRow)*colW, l.LegendTop+(i/legendPerRow)*legendRowH)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
