// Package session keeps the per-user state of the web UI: the pasted input,
// the editable color table and the settings used to recompute the view.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
)

// ExampleInput is shown to new sessions.
const ExampleInput = `> Sequence 1
208 PRO 208 632 314 208 632 332 624 632 631 601 HYP 634 HYP HYP 624 PRO 208 208 332 632 208 HYP HYP HYP 601 631 601 632 314 624 208 PRO 208 208 HYP 601 HYP 601 633 HYP 332 208 208 PRO 624 210 632
> Sequence 2
211 632 624 632 PRO 208 332 PRO 208 314 632 HYP HYP HYP 601 601 208 632 PRO 208 332 632 624 HYP HYP 633 HYP 601 601 208 332 624 208 PRO 208 202 HYP HYP HYP 632 601 601 PRO 208 208 332 624 211 632
> Sequence 3
208 632 624 PRO 332 208 632 PRO 208 332 HYP 601 HYP 631 HYP 601 208 332 632 208 632 PRO 624 HYP HYP 332 208 631 HYP 208 PRO 208 208 332 624 632 HYP HYP 631 HYP 208 601 PRO 624 208 332 203 632 632
> Sequence 4
211 332 624 632 314 208 PRO 632 624 PRO HYP 601 208 633 HYP HYP 624 632 632 208 332 PRO 210 HYP HYP HYP 601 631 601 632 332 208 211 PRO 624 211 HYP 631 HYP HYP 208 601 PRO 208 208 332 624 208 632
`

// UsageHint is shown instead of a grid when no sequence could be read.
const UsageHint = `Make sure you paste a FASTA sequence in the proper format, for example:

> name1
sequence1
> name2
sequence2
> name3
sequence3
...`

// ErrEntryNotFound is returned for unknown color table rows.
var ErrEntryNotFound = errors.New("session: no such entry")

// Entry is one editable row of the color table. Codes is kept as typed.
type Entry struct {
	ID       string
	Codes    string
	Property string
	Color    palette.Color
	Standard bool
}

// Group converts the row into a palette group.
func (e Entry) Group() palette.Group {
	return palette.Group{ID: e.ID, Codes: palette.SplitCodes(e.Codes), Property: e.Property, Color: e.Color}
}

// Defaults is what a new session starts from and what the view is computed
// with.
type Defaults struct {
	Input   string
	Groups  []palette.Group
	Blank   palette.Color
	Parser  fasta.Parser
	Builder grid.Builder
	Layout  grid.LayoutOptions
}

// DefaultDefaults uses the built-in palette and example input.
func DefaultDefaults() Defaults {
	return Defaults{
		Input:   ExampleInput,
		Groups:  palette.DefaultGroups(),
		Blank:   palette.White,
		Parser:  *fasta.DefaultParser(),
		Builder: grid.Builder{Gaps: grid.DefaultGaps},
		Layout:  grid.DefaultLayoutOptions(),
	}
}

// Session is the state of one user. It is not safe for concurrent use; the
// Store serializes access.
type Session struct {
	ID       string
	Input    string
	Standard []Entry
	Added    []Entry
	Policy   fasta.Policy
	Blank    palette.Color

	defaults Defaults
	nextID   int
}

// New returns a session holding the example input and the default palette.
func New(id string, d Defaults) *Session {
	s := &Session{
		ID:       id,
		Input:    d.Input,
		Policy:   d.Parser.Policy,
		defaults: d,
	}
	s.ResetColors()
	return s
}

// SetInput replaces the pasted text.
func (s *Session) SetInput(text string) {
	s.Input = text
}

// ResetColors restores the default color table and drops added rows.
func (s *Session) ResetColors() {
	s.Standard = make([]Entry, 0, len(s.defaults.Groups))
	for _, g := range s.defaults.Groups {
		s.Standard = append(s.Standard, Entry{
			ID:       g.ID,
			Codes:    strings.Join(g.Codes, " "),
			Property: g.Property,
			Color:    g.Color,
			Standard: true,
		})
	}
	s.Added = nil
	s.Blank = s.defaults.Blank
	if s.Blank == "" {
		s.Blank = palette.White
	}
}

func invalidColor(err error, raw string) error {
	return fault.Wrap(err,
		ftag.With(ftag.InvalidArgument),
		fmsg.WithDesc("parse color", fmt.Sprintf("%q is not a color; use #rgb or #rrggbb.", raw)))
}

func notFound(id string) error {
	return fault.Wrap(fmt.Errorf("%w: %q", ErrEntryNotFound, id),
		ftag.With(ftag.NotFound),
		fmsg.WithDesc("lookup entry", "That color entry no longer exists."))
}

func (s *Session) find(id string) *Entry {
	for i := range s.Standard {
		if s.Standard[i].ID == id {
			return &s.Standard[i]
		}
	}
	for i := range s.Added {
		if s.Added[i].ID == id {
			return &s.Added[i]
		}
	}
	return nil
}

// Entry returns the row with the given id.
func (s *Session) Entry(id string) (Entry, bool) {
	e := s.find(id)
	if e == nil {
		return Entry{}, false
	}
	return *e, true
}

// UpdateEntry edits a row. The row is left unchanged if color is invalid.
func (s *Session) UpdateEntry(id, codes, property, color string) error {
	e := s.find(id)
	if e == nil {
		return notFound(id)
	}
	c, err := palette.ParseColor(color)
	if err != nil {
		return invalidColor(err, color)
	}
	e.Codes = strings.TrimSpace(codes)
	e.Property = strings.TrimSpace(property)
	e.Color = c
	return nil
}

// AddEntry appends a user row after the standard ones. An empty color means
// white.
func (s *Session) AddEntry(codes, property, color string) (Entry, error) {
	c := palette.White
	if strings.TrimSpace(color) != "" {
		var err error
		if c, err = palette.ParseColor(color); err != nil {
			return Entry{}, invalidColor(err, color)
		}
	}
	s.nextID++
	e := Entry{
		ID:       fmt.Sprintf("added-%d", s.nextID),
		Codes:    strings.TrimSpace(codes),
		Property: strings.TrimSpace(property),
		Color:    c,
	}
	s.Added = append(s.Added, e)
	return e, nil
}

// DeleteEntry removes an added row. Standard rows can be edited but not
// deleted.
func (s *Session) DeleteEntry(id string) error {
	for i, e := range s.Added {
		if e.ID == id {
			s.Added = append(s.Added[:i:i], s.Added[i+1:]...)
			return nil
		}
	}
	if s.find(id) != nil {
		return fault.New("standard entry "+id+" cannot be deleted",
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("delete standard entry", "Standard entries can be edited but not deleted."))
	}
	return notFound(id)
}

// SetBlank changes the padding color.
func (s *Session) SetBlank(color string) error {
	c, err := palette.ParseColor(color)
	if err != nil {
		return invalidColor(err, color)
	}
	s.Blank = c
	return nil
}

// Entries is the color table in application order.
func (s *Session) Entries() []Entry {
	out := make([]Entry, 0, len(s.Standard)+len(s.Added))
	out = append(out, s.Standard...)
	return append(out, s.Added...)
}

// Mapping rebuilds the color mapping: standard rows first, added rows after,
// each in order, so a later row wins.
func (s *Session) Mapping() *palette.Mapping {
	m := palette.NewMapping()
	for _, e := range s.Entries() {
		m.Apply(e.Group())
	}
	m.SetBlank(s.Blank)
	return m
}

// View is everything the UI shows for the current input.
type View struct {
	Records  []fasta.Record
	Warnings []fasta.Warning
	Grid     *grid.Grid
	Layout   grid.Layout
	// Prompt is set instead of Grid when nothing could be read.
	Prompt string
	Err    error
}

// HasGrid reports whether there is something to draw.
func (v View) HasGrid() bool {
	return v.Grid != nil
}

// View parses the input and lays it out with the session's mapping.
func (s *Session) View() View {
	p := s.defaults.Parser
	p.Policy = s.Policy
	res, err := p.ParseString(s.Input)
	if err != nil {
		var pe *fasta.ParseError
		if errors.As(err, &pe) {
			err = fault.Wrap(err,
				ftag.With(ftag.InvalidArgument),
				fmsg.WithDesc("strict parse", "Input rejected: "+pe.Warning.String()+"."))
		}
		return View{Err: err, Prompt: UsageHint}
	}
	v := View{Records: res.Records, Warnings: res.Warnings}
	g, err := s.defaults.Builder.Build(res.Records, s.Mapping())
	if errors.Is(err, grid.ErrNoRecords) {
		v.Prompt = UsageHint
		return v
	}
	if err != nil {
		v.Err = err
		return v
	}
	v.Grid = g
	v.Layout = grid.NewLayout(g, s.defaults.Layout)
	return v
}
