package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
)

func TestNewSessionDefaults(t *testing.T) {
	s := New("x", DefaultDefaults())
	if s.Input != ExampleInput {
		t.Fatalf("new session should hold the example input")
	}
	if len(s.Standard) != 11 || len(s.Added) != 0 {
		t.Fatalf("unexpected table: %d standard, %d added", len(s.Standard), len(s.Added))
	}
	if s.Standard[7].Codes != "PRO" || !s.Standard[7].Standard {
		t.Fatalf("unexpected standard row %+v", s.Standard[7])
	}

	v := s.View()
	if v.Err != nil || !v.HasGrid() {
		t.Fatalf("example input should render: %v", v.Err)
	}
	if len(v.Records) != 4 || v.Grid.Columns != 49 {
		t.Fatalf("got %d records and %d columns", len(v.Records), v.Grid.Columns)
	}
	if v.Layout.Width <= 0 || v.Layout.Height < 430 {
		t.Fatalf("unexpected layout %+v", v.Layout)
	}
}

func TestViewEmptyInputPrompts(t *testing.T) {
	s := New("x", DefaultDefaults())
	s.SetInput("   \n")
	v := s.View()
	if v.HasGrid() || v.Prompt != UsageHint || v.Err != nil {
		t.Fatalf("expected prompt only, got %+v", v)
	}
}

func TestViewStrictPolicy(t *testing.T) {
	s := New("x", DefaultDefaults())
	s.SetInput("junk\n>a\nPRO\n")
	if v := s.View(); v.Err != nil || len(v.Warnings) != 1 {
		t.Fatalf("lenient view should warn, got err=%v warnings=%v", v.Err, v.Warnings)
	}

	s.Policy = fasta.Strict
	v := s.View()
	if v.Err == nil || v.HasGrid() {
		t.Fatalf("strict view should fail")
	}
	var pe *fasta.ParseError
	if !errors.As(v.Err, &pe) || pe.Warning.Kind != fasta.KindOrphanText {
		t.Fatalf("expected wrapped parse error, got %v", v.Err)
	}
	if ftag.Get(v.Err) != ftag.InvalidArgument || fmsg.GetIssue(v.Err) == "" {
		t.Fatalf("strict error should be a user-facing invalid argument")
	}
}

func TestMappingOrder(t *testing.T) {
	s := New("x", DefaultDefaults())
	if _, err := s.AddEntry("PRO 999", "Custom", "#123456"); err != nil {
		t.Fatalf("add: %v", err)
	}
	m := s.Mapping()
	if m.Lookup("PRO") != "#123456" || m.Lookup("999") != "#123456" {
		t.Fatalf("added rows should win: PRO=%s", m.Lookup("PRO"))
	}
	if m.Lookup("HYP") != "#abc5c5" {
		t.Fatalf("other codes keep defaults: HYP=%s", m.Lookup("HYP"))
	}

	if err := s.UpdateEntry("default", "default", "", "#000"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Mapping().Fallback(); got != "#000000" {
		t.Fatalf("fallback = %s", got)
	}
}

func TestUpdateEntryErrors(t *testing.T) {
	s := New("x", DefaultDefaults())
	err := s.UpdateEntry("pro", "PRO", "Proline", "grey")
	if ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("bad color should be invalid argument, got %v", err)
	}
	if e, _ := s.Entry("pro"); e.Color != "#b8b8b8" {
		t.Fatalf("row changed on error: %+v", e)
	}
	err = s.UpdateEntry("nope", "", "", "#fff")
	if ftag.Get(err) != ftag.NotFound || !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("unknown id should be not found, got %v", err)
	}
}

func TestAddDeleteReset(t *testing.T) {
	s := New("x", DefaultDefaults())
	a, err := s.AddEntry("", "", "")
	if err != nil || a.Color != palette.White {
		t.Fatalf("empty add should be a white row: %+v %v", a, err)
	}
	b, _ := s.AddEntry("SAR", "", "#ff0000")
	if a.ID == b.ID {
		t.Fatalf("ids must be unique")
	}
	if _, err := s.AddEntry("X", "", "red"); err == nil {
		t.Fatalf("invalid color accepted")
	}

	if err := s.DeleteEntry(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Added) != 1 || s.Added[0].ID != b.ID {
		t.Fatalf("wrong row deleted: %+v", s.Added)
	}
	if err := s.DeleteEntry("pro"); ftag.Get(err) != ftag.InvalidArgument {
		t.Fatalf("standard rows cannot be deleted, got %v", err)
	}
	if err := s.DeleteEntry(a.ID); ftag.Get(err) != ftag.NotFound {
		t.Fatalf("double delete should be not found, got %v", err)
	}

	_ = s.UpdateEntry("pro", "PRO", "Proline", "#000000")
	s.ResetColors()
	if len(s.Added) != 0 || s.Standard[7].Color != "#b8b8b8" {
		t.Fatalf("reset did not restore defaults")
	}
}

func TestBlankColor(t *testing.T) {
	s := New("x", DefaultDefaults())
	s.SetInput(">a\nPRO-HYP\n>b\nPRO\n")
	if err := s.SetBlank("#eee"); err != nil {
		t.Fatalf("set blank: %v", err)
	}
	v := s.View()
	if c := v.Grid.Rows[1].Cells[1]; !c.Gap || c.Color != "#eeeeee" {
		t.Fatalf("padding cell %+v", c)
	}
}

func TestCustomDefaults(t *testing.T) {
	d := DefaultDefaults()
	d.Input = ">a\nA_B\n"
	d.Parser.Delimiter = "_"
	d.Builder = grid.Builder{Gaps: []string{"B"}}
	s := New("x", d)
	v := s.View()
	if !v.HasGrid() || v.Grid.Columns != 2 || !v.Grid.Rows[0].Cells[1].Gap {
		t.Fatalf("custom parser and gaps not used: %+v", v.Grid)
	}
}

func TestStoreLifecycle(t *testing.T) {
	st := NewStore(time.Hour, DefaultDefaults())
	now := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	id := st.Create()
	if got, created := st.Ensure(id); got != id || created {
		t.Fatalf("Ensure should keep a live session")
	}
	if err := st.With(id, func(s *Session) error { s.SetInput(">a\nPRO\n"); return nil }); err != nil {
		t.Fatalf("with: %v", err)
	}
	_ = st.With(id, func(s *Session) error {
		if s.Input != ">a\nPRO\n" {
			t.Errorf("state not kept between calls")
		}
		return nil
	})

	now = now.Add(2 * time.Hour)
	if err := st.With(id, func(*Session) error { return nil }); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("expired session not removed")
	}
	if got, created := st.Ensure(id); got == id || !created {
		t.Fatalf("Ensure should replace an expired session")
	}
}

func TestStoreSweepAndDelete(t *testing.T) {
	st := NewStore(time.Minute, DefaultDefaults())
	now := time.Now()
	st.now = func() time.Time { return now }
	a := st.Create()
	now = now.Add(30 * time.Second)
	b := st.Create()
	now = now.Add(45 * time.Second)
	if n := st.Sweep(); n != 1 || st.Len() != 1 {
		t.Fatalf("sweep removed %d, %d left", n, st.Len())
	}
	if err := st.With(a, func(*Session) error { return nil }); err == nil {
		t.Fatalf("swept session still reachable")
	}
	st.Delete(b)
	if st.Len() != 0 {
		t.Fatalf("delete did not remove session")
	}
}

func TestStoreDefaultsSwap(t *testing.T) {
	st := NewStore(0, DefaultDefaults())
	old := st.Create()
	d := DefaultDefaults()
	d.Groups = []palette.Group{{ID: "only", Codes: []string{"PRO"}, Color: palette.Black}}
	st.SetDefaults(d)
	fresh := st.Create()

	_ = st.With(old, func(s *Session) error {
		if len(s.Standard) != 11 {
			t.Errorf("existing session changed by reload")
		}
		return nil
	})
	_ = st.With(fresh, func(s *Session) error {
		if len(s.Standard) != 1 || s.Mapping().Lookup("PRO") != palette.Black {
			t.Errorf("new session ignored reloaded defaults")
		}
		return nil
	})
}

func TestStoreWithSerializes(t *testing.T) {
	st := NewStore(0, DefaultDefaults())
	id := st.Create()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.With(id, func(s *Session) error {
				_, err := s.AddEntry("X", "", "")
				return err
			})
		}()
	}
	wg.Wait()
	_ = st.With(id, func(s *Session) error {
		if len(s.Added) != 20 {
			t.Errorf("lost updates: %d rows", len(s.Added))
		}
		return nil
	})
}
