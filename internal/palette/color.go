// Package palette maps peptoid residue codes to display colors.
//
// A Mapping is built by layering Groups: each group assigns one color and one
// legend property to a set of codes, and later groups override earlier ones.
// The reserved code "default" sets the fallback color for unmapped codes.
package palette

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a normalized "#rrggbb" hex color.
type Color string

// Fixed colors used by the renderers.
const (
	White Color = "#ffffff"
	Black Color = "#000000"
)

// ParseColor accepts "#rgb" or "#rrggbb" (the leading '#' is optional) and
// returns the normalized lowercase form.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if n := len(s) - 1; n != 3 && n != 6 {
		return "", fmt.Errorf("invalid color %q: want #rgb or #rrggbb", s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(c.Hex()), nil
}

// MustColor is ParseColor for package-level literals.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	return string(c)
}

func (c Color) colorful() colorful.Color {
	cc, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return cc
}

// RGBA converts c for raster drawing.
func (c Color) RGBA() color.RGBA {
	r, g, b := c.colorful().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// TextColor returns black or white, whichever reads better on c.
func (c Color) TextColor() Color {
	l, _, _ := c.colorful().Lab()
	if l < 0.5 {
		return White
	}
	return Black
}
