// Package config holds the stagecraft configuration: browser and deck
// geometry, capture timing, notes conversion, record storage, document
// output and the preview server.
//
// A Config comes from a YAML file (LoadFile) or from viper, which layers
// flags, STAGECRAFT_* environment variables and the config file (Load).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/idgen"
	"github.com/hazyhaar/stagecraft/notes"
	"github.com/hazyhaar/stagecraft/output"
	"github.com/hazyhaar/stagecraft/output/tools"
	"github.com/hazyhaar/stagecraft/preview"
	"github.com/hazyhaar/stagecraft/reveal"
	"github.com/hazyhaar/stagecraft/store"
)

// Config is the top-level stagecraft configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser" mapstructure:"browser"`
	Capture CaptureConfig `yaml:"capture" mapstructure:"capture"`
	Notes   NotesConfig   `yaml:"notes" mapstructure:"notes"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Serve   ServeConfig   `yaml:"serve" mapstructure:"serve"`
}

// BrowserConfig controls Chrome and how the deck is loaded.
type BrowserConfig struct {
	URL             string        `yaml:"url" mapstructure:"url"`
	Remote          string        `yaml:"remote" mapstructure:"remote"`
	Headful         bool          `yaml:"headful" mapstructure:"headful"`
	Bin             string        `yaml:"bin" mapstructure:"bin"`
	Stealth         bool          `yaml:"stealth" mapstructure:"stealth"`
	BlockResources  []string      `yaml:"block_resources" mapstructure:"block_resources"`
	Width           int           `yaml:"width" mapstructure:"width"`
	Height          int           `yaml:"height" mapstructure:"height"`
	Zoom            float64       `yaml:"zoom" mapstructure:"zoom"`
	LinkSelector    string        `yaml:"link_selector" mapstructure:"link_selector"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout" mapstructure:"navigate_timeout"`
	ReadyTimeout    time.Duration `yaml:"ready_timeout" mapstructure:"ready_timeout"`
	Settle          time.Duration `yaml:"settle" mapstructure:"settle"`
}

// CaptureConfig holds the walk timing knobs.
type CaptureConfig struct {
	OutDir            string        `yaml:"out_dir" mapstructure:"out_dir"`
	NamePattern       string        `yaml:"name_pattern" mapstructure:"name_pattern"`
	FragmentThreshold time.Duration `yaml:"fragment_threshold" mapstructure:"fragment_threshold"`
	PreWait           time.Duration `yaml:"pre_wait" mapstructure:"pre_wait"`
	SettleDelay       time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`
	InitialSettle     time.Duration `yaml:"initial_settle" mapstructure:"initial_settle"`
	ReadyTimeout      time.Duration `yaml:"ready_timeout" mapstructure:"ready_timeout"` // 0 = unbounded
	QueryRetries      int           `yaml:"query_retries" mapstructure:"query_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
	IncludeFinal      bool          `yaml:"include_final" mapstructure:"include_final"`
}

// NotesConfig controls the HTML to markdown conversion.
type NotesConfig struct {
	EscapeMode      string `yaml:"escape_mode" mapstructure:"escape_mode"` // disabled | smart
	StrongDelimiter string `yaml:"strong_delimiter" mapstructure:"strong_delimiter"`
}

// StoreConfig locates the record. A .db/.sqlite path keeps every
// checkpoint of every run.
type StoreConfig struct {
	Path  string `yaml:"path" mapstructure:"path"`
	RunID string `yaml:"run_id" mapstructure:"run_id"`
}

// OutputConfig applies to every generated document.
type OutputConfig struct {
	Title   string `yaml:"title" mapstructure:"title"`
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Browser.URL == "" {
		c.Browser.URL = reveal.DefaultURL
	}
	if c.Browser.Width <= 0 {
		c.Browser.Width = 1600
	}
	if c.Browser.Height <= 0 {
		c.Browser.Height = 900
	}
	if c.Browser.Zoom <= 0 {
		c.Browser.Zoom = 0.7
	}
	if c.Browser.LinkSelector == "" {
		c.Browser.LinkSelector = reveal.DefaultLinkSelector
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Browser.ReadyTimeout <= 0 {
		c.Browser.ReadyTimeout = 30 * time.Second
	}
	if c.Browser.Settle <= 0 {
		c.Browser.Settle = time.Second
	}

	if c.Capture.NamePattern == "" {
		c.Capture.NamePattern = capture.DefaultNamePattern
	}
	if c.Capture.FragmentThreshold <= 0 {
		c.Capture.FragmentThreshold = capture.DefaultFragmentThreshold
	}
	if c.Capture.PreWait <= 0 {
		c.Capture.PreWait = 50 * time.Millisecond
	}
	if c.Capture.SettleDelay <= 0 {
		c.Capture.SettleDelay = time.Second
	}
	if c.Capture.InitialSettle <= 0 {
		c.Capture.InitialSettle = time.Second
	}
	if c.Capture.ReadyTimeout < 0 {
		c.Capture.ReadyTimeout = 0
	}
	if c.Capture.QueryRetries < 0 {
		c.Capture.QueryRetries = 0
	}
	if c.Capture.RetryBackoff <= 0 {
		c.Capture.RetryBackoff = 100 * time.Millisecond
	}

	if c.Notes.EscapeMode == "" {
		c.Notes.EscapeMode = notes.EscapeDisabled
	}
	if c.Notes.StrongDelimiter == "" {
		c.Notes.StrongDelimiter = "**"
	}

	if c.Store.Path == "" {
		c.Store.Path = tools.DefaultRecord
	}
	if c.Output.Title == "" {
		c.Output.Title = "stagecraft"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = preview.DefaultAddr
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Notes.EscapeMode {
	case notes.EscapeDisabled, notes.EscapeSmart:
	default:
		return fmt.Errorf("config: notes.escape_mode %q: want %q or %q", c.Notes.EscapeMode, notes.EscapeDisabled, notes.EscapeSmart)
	}
	switch c.Notes.StrongDelimiter {
	case "**", "__":
	default:
		return fmt.Errorf("config: notes.strong_delimiter %q: want ** or __", c.Notes.StrongDelimiter)
	}
	if !strings.Contains(c.Capture.NamePattern, "%") {
		return fmt.Errorf("config: capture.name_pattern %q has no sequence verb", c.Capture.NamePattern)
	}
	if c.Store.RunID != "" {
		if _, err := idgen.Parse(c.Store.RunID); err != nil {
			return fmt.Errorf("config: store.run_id: %w", err)
		}
	}
	return nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults registers every key with its default value, so environment
// variables are seen by Unmarshal even when no config file sets the key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	defaults := map[string]any{
		"browser.url":              d.Browser.URL,
		"browser.remote":           d.Browser.Remote,
		"browser.headful":          d.Browser.Headful,
		"browser.bin":              d.Browser.Bin,
		"browser.stealth":          d.Browser.Stealth,
		"browser.block_resources":  d.Browser.BlockResources,
		"browser.width":            d.Browser.Width,
		"browser.height":           d.Browser.Height,
		"browser.zoom":             d.Browser.Zoom,
		"browser.link_selector":    d.Browser.LinkSelector,
		"browser.navigate_timeout": d.Browser.NavigateTimeout,
		"browser.ready_timeout":    d.Browser.ReadyTimeout,
		"browser.settle":           d.Browser.Settle,

		"capture.out_dir":            d.Capture.OutDir,
		"capture.name_pattern":       d.Capture.NamePattern,
		"capture.fragment_threshold": d.Capture.FragmentThreshold,
		"capture.pre_wait":           d.Capture.PreWait,
		"capture.settle_delay":       d.Capture.SettleDelay,
		"capture.initial_settle":     d.Capture.InitialSettle,
		"capture.ready_timeout":      d.Capture.ReadyTimeout,
		"capture.query_retries":      d.Capture.QueryRetries,
		"capture.retry_backoff":      d.Capture.RetryBackoff,
		"capture.include_final":      d.Capture.IncludeFinal,

		"notes.escape_mode":      d.Notes.EscapeMode,
		"notes.strong_delimiter": d.Notes.StrongDelimiter,

		"store.path":   d.Store.Path,
		"store.run_id": d.Store.RunID,

		"output.title":    d.Output.Title,
		"output.base_dir": d.Output.BaseDir,

		"serve.addr": d.Serve.Addr,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load decodes the configuration held by v. Nested keys map to
// environment variables with dots replaced by underscores
// (STAGECRAFT_CAPTURE_SETTLE_DELAY) when v has an env prefix set.
func Load(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RevealConfig returns the browser session settings.
func (c *Config) RevealConfig(log *slog.Logger) reveal.Config {
	b := c.Browser
	return reveal.Config{
		URL:             b.URL,
		RemoteURL:       b.Remote,
		Headful:         b.Headful,
		Bin:             b.Bin,
		Stealth:         b.Stealth,
		BlockResources:  b.BlockResources,
		Width:           b.Width,
		Height:          b.Height,
		Zoom:            b.Zoom,
		LinkSelector:    b.LinkSelector,
		NavigateTimeout: b.NavigateTimeout,
		ReadyTimeout:    b.ReadyTimeout,
		Settle:          b.Settle,
		Logger:          log,
	}
}

// NotesConfig returns the notes converter settings.
func (c *Config) NotesConfig(log *slog.Logger) notes.Config {
	return notes.Config{
		EscapeMode:      c.Notes.EscapeMode,
		StrongDelimiter: c.Notes.StrongDelimiter,
		Logger:          log,
	}
}

// CaptureConfig returns the controller settings. transform converts note
// markup; nil keeps it as is.
func (c *Config) CaptureConfig(transform func(string) string, log *slog.Logger) capture.Config {
	cc := c.Capture
	return capture.Config{
		Dir:               cc.OutDir,
		NamePattern:       cc.NamePattern,
		FragmentThreshold: cc.FragmentThreshold,
		PreWait:           cc.PreWait,
		SettleDelay:       cc.SettleDelay,
		InitialSettle:     cc.InitialSettle,
		ReadyTimeout:      cc.ReadyTimeout,
		QueryRetries:      cc.QueryRetries,
		RetryBackoff:      cc.RetryBackoff,
		IncludeFinal:      cc.IncludeFinal,
		Transform:         transform,
		Logger:            log,
	}
}

// StoreOptions returns the record store options.
func (c *Config) StoreOptions(log *slog.Logger) store.Options {
	return store.Options{RunID: c.Store.RunID, Logger: log}
}

// ToolsConfig returns the document service settings. Pages take the
// browser viewport size, one point or pixel per CSS pixel.
func (c *Config) ToolsConfig(log *slog.Logger) tools.Config {
	return tools.Config{
		Record: c.Store.Path,
		RunID:  c.Store.RunID,
		Output: output.Options{
			BaseDir: c.Output.BaseDir,
			Width:   float64(c.Browser.Width),
			Height:  float64(c.Browser.Height),
			Title:   c.Output.Title,
			Logger:  log,
		},
		Logger: log,
	}
}

// PreviewConfig returns the preview server settings.
func (c *Config) PreviewConfig(log *slog.Logger) preview.Config {
	return preview.Config{Addr: c.Serve.Addr, Record: c.Store.Path, Logger: log}
}
