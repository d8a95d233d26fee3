package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oaktreenum/peptoid-msa/internal/config"
	"github.com/oaktreenum/peptoid-msa/internal/export"
	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/logging"
	"github.com/oaktreenum/peptoid-msa/internal/termview"
)

// version is the program version. It can be overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

// globals shared by every subcommand
type globals struct {
	configPath string
	logFile    string
	verbose    bool

	cfg      *config.Config
	logger   *log.Logger
	closeLog func() error
}

// setup loads the config and builds the logger. Flags override config values.
func (g *globals) setup() error {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return err
	}
	if g.logFile != "" {
		cfg.LogFile = g.logFile
	}
	g.cfg = cfg
	g.logger, g.closeLog = logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Verbose: g.verbose})
	if cfg.Source != "" {
		g.logger.Debug("config loaded", "path", cfg.Source)
	}
	return nil
}

func (g *globals) teardown() {
	if g.closeLog != nil {
		_ = g.closeLog()
	}
}

type renderFlags struct {
	format   string
	out      string
	scale    int
	strict   bool
	preview  bool
	title    string
	contrast bool
	wrap     int
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), "stdin", err
	}
	data, err := os.ReadFile(args[0])
	return string(data), args[0], err
}

// pickFormat uses --format, then the extension of --out, then svg.
func pickFormat(flagValue, out string) (export.Format, error) {
	if flagValue != "" {
		return export.ParseFormat(flagValue)
	}
	if ext := filepath.Ext(out); ext != "" && out != "-" {
		return export.ParseFormat(ext)
	}
	return export.SVG, nil
}

func runRender(g *globals, f *renderFlags, cmd *cobra.Command, args []string) error {
	cfg, logger := g.cfg, g.logger
	if f.strict {
		cfg.Parser.Strict = true
	}
	if f.scale > 0 {
		cfg.Render.Scale = f.scale
	}
	if f.title != "" {
		cfg.Render.Title = f.title
	}
	if f.contrast {
		cfg.Render.ContrastText = true
	}

	format, err := pickFormat(f.format, f.out)
	if err != nil {
		return errors.New(export.Issue(err))
	}

	text, source, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	parser := cfg.FastaParser()
	res, err := parser.ParseString(text)
	var pe *fasta.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%s rejected by strict parsing: %w", source, err)
	}
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		logger.Warn("skipped malformed input", "source", source, "line", w.Line, "kind", w.Kind, "detail", w.Message)
	}
	logger.Info("parsed fasta", "source", source, "records", len(res.Records), "policy", parser.Policy)

	m, err := cfg.Mapping()
	if err != nil {
		return err
	}
	gr, err := cfg.GridBuilder().Build(res.Records, m)
	if err != nil {
		if errors.Is(err, grid.ErrNoRecords) {
			return fmt.Errorf("%s: no sequences found; expected FASTA such as\n> name1\nPRO HYP 601", source)
		}
		return err
	}
	layout := grid.NewLayout(gr, cfg.LayoutOptions())
	logger.Debug("layout", "columns", gr.Columns, "cell", layout.CellWidth, "width", layout.Width, "height", layout.Height)

	if f.preview {
		fmt.Fprintln(cmd.OutOrStdout(), termview.Grid(gr, 0))
		fmt.Fprintln(cmd.OutOrStdout(), termview.Legend(gr.Legend))
	}

	wopts := cfg.FastaWriteOptions()
	wopts.Columns = f.wrap
	job := export.Job{
		Format:  format,
		Grid:    gr,
		Layout:  layout,
		Records: res.Records,
		Render:  cfg.RenderOptions(),
		FASTA:   wopts,
	}

	out := f.out
	if out == "" {
		if f.preview {
			return nil
		}
		base := "msa"
		if source != "stdin" {
			base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		}
		out = export.Filename(base, format)
	}
	if out == "-" {
		data, err := export.Bytes(job)
		if err != nil {
			return fmt.Errorf("%s: %w", export.Issue(err), err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := export.WriteFile(out, job); err != nil {
		return fmt.Errorf("%s: %w", export.Issue(err), err)
	}
	logger.Info("wrote "+strings.ToUpper(string(format)), "path", out, "sequences", len(gr.Rows), "columns", gr.Columns)
	return nil
}

func newRenderCmd(g *globals) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render [file.fasta]",
		Short: "Render a FASTA alignment to PNG, SVG or FASTA",
		Long: `
Parse peptoid sequences written as 3-letter codes and draw the alignment grid,
one colored cell per residue. Reads stdin when no file (or "-") is given.

The output format is taken from --format, then from the extension of --out,
and defaults to SVG. Use --out - to write the artifact to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(g, f, cmd, args)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: png, svg or fasta")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file (default derived from the input name, '-' for stdout)")
	cmd.Flags().IntVar(&f.scale, "scale", 0, "PNG pixel scale (overrides config)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on malformed FASTA entries instead of skipping them")
	cmd.Flags().BoolVarP(&f.preview, "preview", "p", false, "print the grid to the terminal")
	cmd.Flags().StringVar(&f.title, "title", "", "figure title")
	cmd.Flags().BoolVar(&f.contrast, "contrast", false, "white text on dark cells")
	cmd.Flags().IntVar(&f.wrap, "wrap", 0, "residues per line in FASTA output (0 = no wrapping)")
	return cmd
}

func newPaletteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "palette",
		Short: "Print the effective color map and legend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := g.cfg.Mapping()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), termview.Mapping(m))
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), termview.Legend(m.Legend()))
			return nil
		},
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "peptoid-msa",
		Short:         "Visualize multiple sequence alignments of peptoids",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			g.teardown()
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (json, yaml or toml)")
	root.PersistentFlags().StringVar(&g.logFile, "log-file", "", "also append logs to this file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose (debug) logging")
	root.AddCommand(newRenderCmd(g), newPaletteCmd(g))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
