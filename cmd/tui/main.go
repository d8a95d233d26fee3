package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oaktreenum/peptoid-msa/internal/config"
	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/logging"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
	"github.com/oaktreenum/peptoid-msa/internal/termview"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#F59E0B")
	surfaceColor = lipgloss.Color("#1F2937")
	textColor    = lipgloss.Color("#F3F4F6")
	mutedColor   = lipgloss.Color("#9CA3AF")
	borderColor  = lipgloss.Color("#374151")
	warnColor    = lipgloss.Color("#F95B5E")
)

var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	sectionStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warnColor)
)

type keyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Next     key.Binding
	Grid     key.Binding
	Sequence key.Binding
	Legend   key.Binding
}

var keys = keyMap{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Help:     key.NewBinding(key.WithKeys("h")),
	Next:     key.NewBinding(key.WithKeys("tab")),
	Grid:     key.NewBinding(key.WithKeys("1")),
	Sequence: key.NewBinding(key.WithKeys("2")),
	Legend:   key.NewBinding(key.WithKeys("3")),
}

type listItem struct {
	row   grid.Row
	codes int
}

func (i listItem) FilterValue() string { return i.row.Label }

func (i listItem) Title() string { return i.row.Label }

func (i listItem) Description() string {
	n := 0
	for _, c := range i.row.Cells {
		if !c.Gap {
			n++
		}
	}
	return fmt.Sprintf("%d residues    %d distinct codes", n, i.codes)
}

type mode int

const (
	modeGrid mode = iota
	modeSequence
	modeLegend
)

func (m mode) String() string {
	switch m {
	case modeGrid:
		return "Grid"
	case modeSequence:
		return "Sequence"
	case modeLegend:
		return "Legend"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	grid          *grid.Grid
	mapping       *palette.Mapping
	warnings      []fasta.Warning
	source        string
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	selectedIndex int
}

func distinct(r grid.Row) int {
	seen := make(map[string]struct{})
	for _, c := range r.Cells {
		if !c.Gap {
			seen[c.Code] = struct{}{}
		}
	}
	return len(seen)
}

func newModel(g *grid.Grid, m *palette.Mapping, warnings []fasta.Warning, source string) model {
	items := make([]list.Item, len(g.Rows))
	for i, r := range g.Rows {
		items[i] = listItem{row: r, codes: distinct(r)}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Sequences"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:        l,
		grid:        g,
		mapping:     m,
		warnings:    warnings,
		source:      source,
		currentMode: modeGrid,
	}
}

// loadModel parses text with the configured parser and palette.
func loadModel(text, source string, cfg *config.Config) (model, error) {
	res, err := cfg.FastaParser().ParseString(text)
	if err != nil {
		return model{}, err
	}
	m, err := cfg.Mapping()
	if err != nil {
		return model{}, err
	}
	g, err := cfg.GridBuilder().Build(res.Records, m)
	if err != nil {
		return model{}, err
	}
	return newModel(g, m, res.Warnings, source), nil
}

func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		// keys go to the filter input while the user is typing
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, keys.Next):
			return m.cycleMode(), nil
		case key.Matches(msg, keys.Grid):
			m.currentMode = modeGrid
			return m, nil
		case key.Matches(msg, keys.Sequence):
			m.currentMode = modeSequence
			return m, nil
		case key.Matches(msg, keys.Legend):
			m.currentMode = modeLegend
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderLeftPanel(), m.renderRightPanel())
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m model) renderLeftPanel() string {
	return containerStyle.
		Width(m.width/3 - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) rightWidth() int {
	return m.width*2/3 - 4
}

// rightContent is the body of the right panel for the current mode.
func (m model) rightContent() string {
	width := m.rightWidth()
	switch m.currentMode {
	case modeSequence:
		item, ok := m.list.SelectedItem().(listItem)
		if !ok {
			return mutedStyle.Render("No sequence selected")
		}
		header := titleStyle.Render(item.row.Label) + mutedStyle.Render(fmt.Sprintf("  %d columns", len(item.row.Cells)))
		return lipgloss.JoinVertical(lipgloss.Left, header, "", termview.Sequence(item.row, width))
	case modeLegend:
		return lipgloss.JoinVertical(lipgloss.Left,
			sectionStyle.Render("Legend:"),
			termview.Legend(m.grid.Legend),
			"",
			sectionStyle.Render("Color map:"),
			termview.Mapping(m.mapping),
		)
	default:
		labelW := 0
		for _, r := range m.grid.Rows {
			labelW = max(labelW, lipgloss.Width(r.Label))
		}
		cols := max(1, (width-labelW-1)/termview.CellWidth)
		body := termview.Grid(m.grid, cols)
		if cols < m.grid.Columns {
			body += "\n" + mutedStyle.Render(fmt.Sprintf("showing %d of %d columns", cols, m.grid.Columns))
		}
		var warn []string
		for _, w := range m.warnings {
			warn = append(warn, warnStyle.Render(w.String()))
		}
		if len(warn) > 0 {
			body += "\n\n" + strings.Join(warn, "\n")
		}
		return body
	}
}

func (m model) renderRightPanel() string {
	header := titleStyle.Render(fmt.Sprintf("%s  (%d sequences, %d columns)", m.source, len(m.grid.Rows), m.grid.Columns))
	return containerStyle.
		Width(m.width*2/3 - 2).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, "", m.rightContent()))
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d sequences", m.selectedIndex+1, len(m.grid.Rows))
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode)
	rightInfo := "Press 'h' for help, 'q' to quit"

	spacing := m.width - len(leftInfo) - len(centerInfo) - len(rightInfo) - 6
	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		statusContent = leftInfo + strings.Repeat(" ", leftSpacing) + centerInfo + strings.Repeat(" ", spacing-leftSpacing) + rightInfo
	} else {
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}
	return statusBarStyle.Width(m.width).Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `Peptoid MSA Browser - Help

Navigation:
  up/down, j/k  Navigate sequences
  /             Filter by label

View Modes:
  1             Alignment grid
  2             Selected sequence
  3             Legend and color map
  tab           Next mode

General:
  h             Toggle this help
  q, Ctrl+C     Quit

Current Mode: ` + m.currentMode.String() + `
Sequences: ` + fmt.Sprintf("%d", len(m.grid.Rows)) + `
`
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Render(helpContent)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func main() {
	configPath := flag.String("config", "", "config file (json, yaml or toml)")
	strict := flag.Bool("strict", false, "reject malformed FASTA entries")
	logFile := flag.String("log", "", "path to write logs (the screen is never written to)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <file.fasta>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *strict {
		cfg.Parser.Strict = true
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	logger, closeLog := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, FileOnly: true})
	defer closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	m, err := loadModel(string(data), path, cfg)
	if err != nil {
		logger.Error("failed to load alignment", "path", path, "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("alignment loaded", "path", path, "sequences", len(m.grid.Rows), "columns", m.grid.Columns, "warnings", len(m.warnings))

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
