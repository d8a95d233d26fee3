// Package render draws alignment grids as SVG or PNG figures.
package render

import (
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
)

// Options tweak drawing. The zero value draws at scale 1 with black cell text.
type Options struct {
	// Scale multiplies every pixel dimension of raster output.
	Scale int
	// ContrastText picks white text on dark cells instead of always black.
	ContrastText bool
	HideLegend   bool
}

func (o Options) scale() int {
	if o.Scale < 1 {
		return 1
	}
	return o.Scale
}

// SVG writes g as a standalone SVG document.
func SVG(w io.Writer, g *grid.Grid, l grid.Layout, opts Options) error {
	cw := &errWriter{w: w}
	canvas := svg.New(cw)
	canvas.Start(l.Width, l.Height)
	canvas.Rect(0, 0, l.Width, l.Height, "fill:#ffffff")

	if l.Title != "" {
		canvas.Title(l.Title)
		canvas.Text(l.Left, l.Top/2, l.Title, "font-family:sans-serif;font-size:17px;fill:#2a3f5f")
	}

	cellText := fmt.Sprintf("font-family:sans-serif;font-size:%dpx;text-anchor:middle;dominant-baseline:central", l.FontSize)
	canvas.Gid("cells")
	for i, row := range g.Rows {
		for j, cell := range row.Cells {
			r := l.CellRect(i, j)
			canvas.Rect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), "fill:"+cell.Color.String())
			if cell.Gap {
				continue
			}
			c := l.CellCenter(i, j)
			canvas.Text(c.X, c.Y, cell.Code, cellText+";fill:"+textColor(cell, opts).String())
		}
	}
	canvas.Gend()

	axis := fmt.Sprintf("font-family:sans-serif;font-size:%dpx;fill:#2a3f5f", l.LabelFontSize)
	canvas.Gstyle(axis + ";text-anchor:end;dominant-baseline:central")
	for i, row := range g.Rows {
		c := l.CellCenter(i, 0)
		canvas.Text(l.Left-8, c.Y, row.Label)
	}
	canvas.Gend()

	canvas.Gstyle(axis + ";text-anchor:middle")
	tickY := l.Top + len(g.Rows)*l.CellHeight + 20
	for j := 0; j < g.Columns; j++ {
		c := l.CellCenter(0, j)
		canvas.Text(c.X, tickY, strconv.Itoa(j+1))
	}
	canvas.Gend()

	if !opts.HideLegend && len(g.Legend) > 0 {
		canvas.Gid("legend")
		for i, e := range g.Legend {
			p := l.LegendSlot(i)
			canvas.Circle(p.X+6, p.Y+6, 6, "fill:"+e.Color.String())
			canvas.Text(p.X+18, p.Y+11, e.Property, axis)
		}
		canvas.Gend()
	}
	canvas.End()
	return cw.err
}

// errWriter remembers the first write error; svgo drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

func textColor(c grid.Cell, opts Options) palette.Color {
	if opts.ContrastText {
		return c.Color.TextColor()
	}
	return palette.Black
}
