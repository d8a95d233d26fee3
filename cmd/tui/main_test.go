package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oaktreenum/peptoid-msa/internal/config"
	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/grid"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func testModel(t *testing.T, text string) model {
	t.Helper()
	m, err := loadModel(text, "test.fasta", testConfig(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m.width = 120
	m.height = 40
	return m
}

func TestCycleMode(t *testing.T) {
	m := testModel(t, ">a\nPRO\n")
	if m.currentMode != modeGrid {
		t.Fatalf("expected initial mode grid, got %v", m.currentMode)
	}
	for _, want := range []mode{modeSequence, modeLegend, modeGrid} {
		m = m.cycleMode()
		if m.currentMode != want {
			t.Fatalf("expected %v, got %v", want, m.currentMode)
		}
	}
}

func TestKeys(t *testing.T) {
	m := testModel(t, ">a\nPRO\n")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	m = next.(model)
	if m.currentMode != modeLegend {
		t.Fatalf("key 3 should select the legend, got %v", m.currentMode)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if next.(model).currentMode != modeGrid {
		t.Fatalf("tab should wrap to grid")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	if !next.(model).showHelp || !strings.Contains(next.(model).View(), "Peptoid MSA Browser") {
		t.Fatalf("h should show help")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("q should quit")
	}
}

func TestRightContentModes(t *testing.T) {
	long := ">first\n" + strings.TrimSpace(strings.Repeat("PRO-HYP-", 40)) + "\n>b\n601\n"
	m := testModel(t, long)

	out := m.rightContent()
	if !strings.Contains(out, "first") || !strings.Contains(out, "of 80 columns") {
		t.Fatalf("grid mode should be cut to the panel width:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > m.rightWidth() {
			t.Fatalf("line wider than panel: %d > %d", w, m.rightWidth())
		}
	}

	m.currentMode = modeSequence
	out = m.rightContent()
	if n := len(strings.Split(out, "\n")); n < 4 {
		t.Fatalf("sequence mode should wrap, got %d lines", n)
	}

	m.currentMode = modeLegend
	out = m.rightContent()
	if !strings.Contains(out, "Proline") || !strings.Contains(out, "Color map:") {
		t.Fatalf("legend mode incomplete:\n%s", out)
	}
}

func TestWarningsShown(t *testing.T) {
	m := testModel(t, "stray\n>a\nPRO\n")
	if !strings.Contains(m.rightContent(), "line 1") {
		t.Fatalf("parse warnings should be listed")
	}
}

func TestLoadModelErrors(t *testing.T) {
	cfg := testConfig(t)
	if _, err := loadModel("", "empty", cfg); !errors.Is(err, grid.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	cfg.Parser.Strict = true
	var pe *fasta.ParseError
	if _, err := loadModel(">\nPRO\n", "x", cfg); !errors.As(err, &pe) {
		t.Fatalf("expected parse error, got %v", err)
	}
}
