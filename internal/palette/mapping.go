package palette

import (
	"sort"
	"strings"
)

// DefaultCode is the reserved code whose color becomes the fallback.
const DefaultCode = "default"

// Group assigns a color and a legend property to a set of residue codes.
type Group struct {
	ID       string
	Codes    []string
	Property string
	Color    Color
}

// SplitCodes splits a user supplied code list ("601 602, PRO") into codes.
func SplitCodes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// LegendEntry is one property shown in the figure legend.
type LegendEntry struct {
	Property string
	Color    Color
}

// Entry is one code of the effective mapping.
type Entry struct {
	Code     string
	Color    Color
	Property string
}

// Mapping resolves residue codes to colors. The zero value is not usable;
// create one with NewMapping.
type Mapping struct {
	colors   map[string]Color
	props    map[string]string
	fallback Color
	blank    Color
	// legend order: first appearance of each property
	order []string
	first map[string]string
}

// NewMapping returns a mapping with a white fallback and blank color, then
// applies groups in order.
func NewMapping(groups ...Group) *Mapping {
	m := &Mapping{
		colors:   make(map[string]Color),
		props:    make(map[string]string),
		fallback: White,
		blank:    White,
		first:    make(map[string]string),
	}
	for _, g := range groups {
		m.Apply(g)
	}
	return m
}

// Apply layers g on top of the current mapping. Codes already present are
// overwritten; nothing is removed.
func (m *Mapping) Apply(g Group) {
	for _, code := range g.Codes {
		if code == DefaultCode {
			m.fallback = g.Color
			continue
		}
		m.Set(code, g.Color)
		if g.Property != "" {
			m.props[code] = g.Property
		}
	}
	if g.Property == "" || len(g.Codes) == 0 {
		return
	}
	if _, ok := m.first[g.Property]; !ok {
		m.order = append(m.order, g.Property)
		m.first[g.Property] = g.Codes[0]
	}
}

// Set overrides the color of a single code.
func (m *Mapping) Set(code string, c Color) {
	if code == DefaultCode {
		m.fallback = c
		return
	}
	m.colors[code] = c
}

// Lookup returns the color for code, or the fallback color.
func (m *Mapping) Lookup(code string) Color {
	if c, ok := m.colors[code]; ok {
		return c
	}
	return m.fallback
}

// Has reports whether code has an explicit color.
func (m *Mapping) Has(code string) bool {
	_, ok := m.colors[code]
	return ok
}

// Property returns the legend property of code, if any.
func (m *Mapping) Property(code string) string {
	return m.props[code]
}

// Fallback is the color of codes without an explicit entry.
func (m *Mapping) Fallback() Color {
	return m.fallback
}

// Blank is the color of padding and gap cells.
func (m *Mapping) Blank() Color {
	return m.blank
}

// SetBlank changes the padding color.
func (m *Mapping) SetBlank(c Color) {
	m.blank = c
}

// Legend lists each property once, in the order it was first applied, colored
// with the current color of the first code that introduced it.
func (m *Mapping) Legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(m.order))
	for _, prop := range m.order {
		out = append(out, LegendEntry{Property: prop, Color: m.Lookup(m.first[prop])})
	}
	return out
}

// Entries returns the explicit code colors sorted by code.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, 0, len(m.colors))
	for code, c := range m.colors {
		out = append(out, Entry{Code: code, Color: c, Property: m.props[code]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of explicitly colored codes.
func (m *Mapping) Len() int {
	return len(m.colors)
}
