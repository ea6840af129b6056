// Package notes turns speaker-note HTML into markdown text.
//
// The conversion is best-effort: markup the converter cannot handle is
// passed through trimmed, never dropped. Input without any element is
// taken as already converted and only trimmed, which makes a second pass
// a no-op.
package notes

import (
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

// Escape modes accepted by Config.EscapeMode.
const (
	EscapeDisabled = "disabled"
	EscapeSmart    = "smart"
)

// Config configures a Converter.
type Config struct {
	// EscapeMode is "disabled" (default) or "smart". Disabled keeps the
	// output of one pass stable under a second pass.
	EscapeMode string `json:"escape_mode" yaml:"escape_mode"`

	// StrongDelimiter is "**" (default) or "__".
	StrongDelimiter string `json:"strong_delimiter" yaml:"strong_delimiter"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.EscapeMode != EscapeSmart {
		c.EscapeMode = EscapeDisabled
	}
	if c.StrongDelimiter != "__" {
		c.StrongDelimiter = "**"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter converts note markup to markdown. It holds no per-call state
// and is safe for concurrent use.
type Converter struct {
	conv   *converter.Converter
	logger *slog.Logger
}

// New creates a Converter with the base, commonmark, strikethrough and
// table plugins.
func New(cfg Config) *Converter {
	cfg.defaults()

	mode := converter.EscapeModeDisabled
	if cfg.EscapeMode == EscapeSmart {
		mode = converter.EscapeModeSmart
	}

	return &Converter{
		conv: converter.NewConverter(
			converter.WithEscapeMode(mode),
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithStrongDelimiter(cfg.StrongDelimiter),
				),
				strikethrough.NewStrikethroughPlugin(),
				table.NewTablePlugin(),
			),
		),
		logger: cfg.Logger,
	}
}

// Transform converts markup to markdown. Empty or whitespace-only input
// yields "". Input holding no element is returned trimmed. Character
// references in the result are decoded unless decoding would turn text
// into markup. If conversion fails the trimmed input is returned.
func (c *Converter) Transform(markup string) string {
	markup = strings.TrimSpace(markup)
	if markup == "" || !hasMarkup(markup) {
		return markup
	}
	out, err := c.conv.ConvertString(markup)
	if err != nil {
		c.logger.Warn("notes: conversion failed, passing markup through", "error", err)
		return markup
	}
	out = strings.TrimSpace(out)
	if plain := html.UnescapeString(out); !hasMarkup(plain) {
		return plain
	}
	return out
}

// hasMarkup reports whether s holds anything besides text: a tag, a
// comment or a doctype.
func hasMarkup(s string) bool {
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.TextToken:
		default:
			return true
		}
	}
}

// Func returns Transform as a plain function, the shape capture.Config
// expects.
func (c *Converter) Func() func(string) string {
	return c.Transform
}
