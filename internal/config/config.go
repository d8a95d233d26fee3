// Package config holds app wide settings read by viper from a config file
// (JSON, YAML or TOML) and PEPTOID_MSA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/oaktreenum/peptoid-msa/internal/fasta"
	"github.com/oaktreenum/peptoid-msa/internal/grid"
	"github.com/oaktreenum/peptoid-msa/internal/palette"
	"github.com/oaktreenum/peptoid-msa/internal/render"
	"github.com/oaktreenum/peptoid-msa/internal/session"
)

// ParserConfig is settings for reading FASTA input
type ParserConfig struct {
	// separator between residue codes, in addition to whitespace
	Delimiter string `mapstructure:"delimiter"`

	// tokens drawn as gap cells
	Gaps []string `mapstructure:"gaps"`

	// fail on malformed entries instead of skipping them
	Strict bool `mapstructure:"strict"`
}

// RenderConfig is settings for figure layout and export
type RenderConfig struct {
	Title    string `mapstructure:"title"`
	Scale    int    `mapstructure:"scale"`
	CellSize int    `mapstructure:"cell_size"`
	MinCell  int    `mapstructure:"min_cell"`
	MaxWidth int    `mapstructure:"max_width"`

	// white text on dark cells
	ContrastText bool `mapstructure:"contrast_text"`
}

// GroupConfig is one palette row: codes sharing a color and legend property
type GroupConfig struct {
	ID       string `mapstructure:"id"`
	Codes    string `mapstructure:"codes"`
	Property string `mapstructure:"property"`
	Color    string `mapstructure:"color"`
}

// Config is the root-level settings struct. Flags passed to the binaries
// override these values.
type Config struct {
	Addr       string        `mapstructure:"addr"`
	LogFile    string        `mapstructure:"log_file"`
	LogLevel   string        `mapstructure:"log_level"`
	Templates  string        `mapstructure:"templates"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	BlankColor string        `mapstructure:"blank_color"`

	Parser  ParserConfig  `mapstructure:"parser"`
	Render  RenderConfig  `mapstructure:"render"`
	Palette []GroupConfig `mapstructure:"palette"`

	// file the settings came from, empty when running on defaults
	Source string `mapstructure:"-"`
}

const envPrefix = "PEPTOID_MSA"

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("templates", "")
	v.SetDefault("session_ttl", "2h")
	v.SetDefault("blank_color", "#ffffff")
	v.SetDefault("parser.delimiter", fasta.DefaultDelimiter)
	v.SetDefault("parser.gaps", grid.DefaultGaps)
	v.SetDefault("parser.strict", false)
	d := grid.DefaultLayoutOptions()
	v.SetDefault("render.title", d.Title)
	v.SetDefault("render.scale", 3)
	v.SetDefault("render.cell_size", d.CellSize)
	v.SetDefault("render.min_cell", d.MinCell)
	v.SetDefault("render.max_width", d.MaxWidth)
	v.SetDefault("render.contrast_text", false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}
	return v
}

// LoadConfig loads settings from path. If path is empty, looks for
// ./config.{json,yaml,toml}. A missing file is not an error: defaults are
// returned.
func LoadConfig(path string) (*Config, error) {
	v := newViper(path)
	if err := read(v); err != nil {
		return nil, err
	}
	return decode(v)
}

func read(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to read config: %w", err)
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	c.Source = v.ConfigFileUsed()
	if _, err := c.Groups(); err != nil {
		return nil, err
	}
	if _, err := palette.ParseColor(c.BlankColor); err != nil {
		return nil, fmt.Errorf("blank_color: %w", err)
	}
	return &c, nil
}

// Watch loads path and calls onChange with the new settings every time the
// file is written. Decode errors are passed along so callers can keep the
// previous settings.
func Watch(path string, onChange func(*Config, error)) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: watch needs an explicit path")
	}
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	c, err := decode(v)
	if err != nil {
		return nil, err
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()
	return c, nil
}

// Groups converts the configured palette into palette groups. An empty
// palette means the built-in one.
func (c *Config) Groups() ([]palette.Group, error) {
	if len(c.Palette) == 0 {
		return palette.DefaultGroups(), nil
	}
	groups := make([]palette.Group, 0, len(c.Palette))
	for i, p := range c.Palette {
		col, err := palette.ParseColor(p.Color)
		if err != nil {
			return nil, fmt.Errorf("palette[%d] (%s): %w", i, p.ID, err)
		}
		id := p.ID
		if id == "" {
			id = fmt.Sprintf("group%d", i+1)
		}
		groups = append(groups, palette.Group{
			ID:       id,
			Codes:    palette.SplitCodes(p.Codes),
			Property: p.Property,
			Color:    col,
		})
	}
	return groups, nil
}

// Mapping builds the default color mapping from the settings.
func (c *Config) Mapping() (*palette.Mapping, error) {
	groups, err := c.Groups()
	if err != nil {
		return nil, err
	}
	m := palette.NewMapping(groups...)
	blank, err := palette.ParseColor(c.BlankColor)
	if err != nil {
		return nil, fmt.Errorf("blank_color: %w", err)
	}
	m.SetBlank(blank)
	return m, nil
}

// FastaParser returns the configured FASTA parser.
func (c *Config) FastaParser() *fasta.Parser {
	p := &fasta.Parser{Delimiter: c.Parser.Delimiter, Policy: fasta.Lenient}
	if c.Parser.Strict {
		p.Policy = fasta.Strict
	}
	return p
}

// GridBuilder returns a grid builder using the configured gap tokens.
func (c *Config) GridBuilder() grid.Builder {
	return grid.Builder{Gaps: c.Parser.Gaps}
}

// LayoutOptions returns the configured figure geometry.
func (c *Config) LayoutOptions() grid.LayoutOptions {
	return grid.LayoutOptions{
		CellSize: c.Render.CellSize,
		MinCell:  c.Render.MinCell,
		MaxWidth: c.Render.MaxWidth,
		Title:    c.Render.Title,
	}
}

// RenderOptions returns the configured drawing options.
func (c *Config) RenderOptions() render.Options {
	return render.Options{Scale: c.Render.Scale, ContrastText: c.Render.ContrastText}
}

// FastaWriteOptions returns the options FASTA exports are written with. An
// empty parser delimiter means codes are whitespace separated, so exports
// join them with a space.
func (c *Config) FastaWriteOptions() fasta.WriteOptions {
	delim := c.Parser.Delimiter
	if delim == "" {
		delim = " "
	}
	return fasta.WriteOptions{Delimiter: delim}
}

// SessionDefaults is what new web sessions start from.
func (c *Config) SessionDefaults() (session.Defaults, error) {
	groups, err := c.Groups()
	if err != nil {
		return session.Defaults{}, err
	}
	blank, err := palette.ParseColor(c.BlankColor)
	if err != nil {
		return session.Defaults{}, fmt.Errorf("blank_color: %w", err)
	}
	return session.Defaults{
		Input:   session.ExampleInput,
		Groups:  groups,
		Blank:   blank,
		Parser:  *c.FastaParser(),
		Builder: c.GridBuilder(),
		Layout:  c.LayoutOptions(),
	}, nil
}
