package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
)

// DefaultScale is the raster scale used for exported PNGs.
const DefaultScale = 3

var axisColor = color.RGBA{R: 0x2a, G: 0x3f, B: 0x5f, A: 0xff}

// PNG rasterizes g. Geometry is multiplied by opts.Scale; text is drawn with
// a bitmap face at 1x and enlarged by the same integer factor.
func PNG(w io.Writer, g *grid.Grid, l grid.Layout, opts Options) error {
	img := Raster(g, l, opts)
	return png.Encode(w, img)
}

// Raster draws g into a new RGBA image.
func Raster(g *grid.Grid, l grid.Layout, opts Options) *image.RGBA {
	s := opts.scale()
	img := image.NewRGBA(image.Rect(0, 0, l.Width*s, l.Height*s))
	draw.Draw(img, img.Bounds(), image.NewUniform(palette.White.RGBA()), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	text := func(str string, x, y int, c color.Color, a align) {
		drawText(img, face, str, x, y, c, a, s)
	}
	scaled := func(r image.Rectangle) image.Rectangle {
		return image.Rect(r.Min.X*s, r.Min.Y*s, r.Max.X*s, r.Max.Y*s)
	}

	if l.Title != "" {
		text(l.Title, l.Left*s, l.Top*s/2, axisColor, alignLeft)
	}

	for i, row := range g.Rows {
		for j, cell := range row.Cells {
			r := scaled(l.CellRect(i, j))
			draw.Draw(img, r, image.NewUniform(cell.Color.RGBA()), image.Point{}, draw.Src)
			if cell.Gap {
				continue
			}
			c := l.CellCenter(i, j)
			text(cell.Code, c.X*s, c.Y*s, textColor(cell, opts).RGBA(), alignCenter)
		}
	}

	for i, row := range g.Rows {
		c := l.CellCenter(i, 0)
		text(row.Label, (l.Left-8)*s, c.Y*s, axisColor, alignRight)
	}
	tickY := (l.Top + len(g.Rows)*l.CellHeight + 16) * s
	for j := 0; j < g.Columns; j++ {
		c := l.CellCenter(0, j)
		text(strconv.Itoa(j+1), c.X*s, tickY, axisColor, alignCenter)
	}

	if !opts.HideLegend {
		for i, e := range g.Legend {
			p := l.LegendSlot(i)
			sw := image.Rect(p.X*s, p.Y*s, (p.X+12)*s, (p.Y+12)*s)
			draw.Draw(img, sw, image.NewUniform(e.Color.RGBA()), image.Point{}, draw.Src)
			text(e.Property, (p.X+18)*s, (p.Y+6)*s, axisColor, alignLeft)
		}
	}
	return img
}

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// drawText draws str vertically centered on y, anchored at x. The glyphs are
// rendered into a 1x mask and scaled by an integer factor with nearest
// neighbor sampling so the bitmap stays crisp.
func drawText(dst draw.Image, face font.Face, str string, x, y int, c color.Color, a align, scale int) {
	if str == "" {
		return
	}
	scale = max(scale, 1)
	m := face.Metrics()
	w := font.MeasureString(face, str).Ceil()
	h := m.Ascent.Ceil() + m.Descent.Ceil()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := &font.Drawer{Dst: mask, Src: image.Opaque, Face: face, Dot: fixed.P(0, m.Ascent.Ceil())}
	d.DrawString(str)

	big := mask
	if scale > 1 {
		big = image.NewAlpha(image.Rect(0, 0, w*scale, h*scale))
		xdraw.NearestNeighbor.Scale(big, big.Bounds(), mask, mask.Bounds(), draw.Src, nil)
	}

	bw, bh := big.Bounds().Dx(), big.Bounds().Dy()
	switch a {
	case alignCenter:
		x -= bw / 2
	case alignRight:
		x -= bw
	}
	top := y - bh/2
	draw.DrawMask(dst, image.Rect(x, top, x+bw, top+bh), image.NewUniform(c), image.Point{}, big, image.Point{}, draw.Over)
}
