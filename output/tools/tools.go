// Package tools exposes record inspection and document generation as
// plain calls and as MCP tools. The CLI generate commands and the MCP
// server share this code path.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/output"
	"github.com/hazyhaar/stagecraft/output/handout"
	"github.com/hazyhaar/stagecraft/output/pdf"
	"github.com/hazyhaar/stagecraft/output/pptx"
	"github.com/hazyhaar/stagecraft/store"
)

// DefaultRecord is the record file read when a request names none.
const DefaultRecord = "stagecraft.json"

// Formats lists the document formats Generate accepts.
var Formats = []string{"pdf", "pptx", "handout"}

// Config configures a Service.
type Config struct {
	// Record is the default record path. Default: DefaultRecord.
	Record string
	// RunID selects the run when the record is an SQLite store.
	RunID string
	// Output carries page geometry, screenshot base dir and title.
	Output output.Options
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Record == "" {
		c.Record = DefaultRecord
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Output.Logger == nil {
		c.Output.Logger = c.Logger
	}
	c.Output.Defaults()
}

// Service loads records and renders them.
type Service struct {
	cfg Config
	log *slog.Logger
}

// New creates a Service.
func New(cfg Config) *Service {
	cfg.defaults()
	return &Service{cfg: cfg, log: cfg.Logger}
}

// Options returns the output options documents are rendered with.
func (s *Service) Options() output.Options { return s.cfg.Output }

// Load reads the record at path, or the configured default when empty.
func (s *Service) Load(ctx context.Context, path string) (capture.Record, error) {
	if path == "" {
		path = s.cfg.Record
	}
	st, err := store.Open(path, store.Options{RunID: s.cfg.RunID, Logger: s.log})
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Load(ctx)
}

// Summary describes a record.
type Summary struct {
	Record      string `json:"record"`
	Units       int    `json:"units"`
	Pages       int    `json:"pages"`
	Links       int    `json:"links"`
	PlacedLinks int    `json:"placed_links"`
	NotedUnits  int    `json:"noted_units"`
	FirstImage  string `json:"first_image,omitempty"`
	LastImage   string `json:"last_image,omitempty"`
}

// Summarize loads the record at path and counts its contents.
func (s *Service) Summarize(ctx context.Context, path string) (*Summary, error) {
	if path == "" {
		path = s.cfg.Record
	}
	rec, err := s.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	sum := &Summary{Record: path, Units: len(rec)}
	for _, u := range rec {
		sum.Links += len(u.Links)
		if strings.TrimSpace(u.SpeakerNotes.Text) != "" {
			sum.NotedUnits++
		}
	}
	pages := output.Pages(rec)
	sum.Pages = len(pages)
	for _, p := range pages {
		sum.PlacedLinks += len(p.Links)
	}
	if len(pages) > 0 {
		sum.FirstImage = pages[0].Image
		sum.LastImage = pages[len(pages)-1].Image
	}
	return sum, nil
}

// GenerateRequest asks for one document.
type GenerateRequest struct {
	Format string `json:"format"`
	Record string `json:"record,omitempty"`
	Output string `json:"output,omitempty"`
}

// GenerateResult reports a written document.
type GenerateResult struct {
	Format string `json:"format"`
	Output string `json:"output"`
	Pages  int    `json:"pages"`
}

// DefaultOutput returns the default file name for format.
func DefaultOutput(format string) string {
	switch format {
	case "pdf":
		return pdf.DefaultFilename
	case "pptx":
		return pptx.DefaultFilename
	case "handout":
		return handout.DefaultFilename
	}
	return ""
}

// Generate loads the requested record and writes it in the requested
// format. PDFs are read back and their page count checked.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	format := strings.ToLower(req.Format)
	dest := req.Output
	if dest == "" {
		dest = DefaultOutput(format)
	}
	if dest == "" {
		return nil, fmt.Errorf("tools: unknown format %q (want one of %s)", req.Format, strings.Join(Formats, ", "))
	}

	rec, err := s.Load(ctx, req.Record)
	if err != nil {
		return nil, err
	}
	pages := len(output.Pages(rec))
	opts := s.cfg.Output

	switch format {
	case "pdf":
		if err := pdf.Generate(rec, dest, opts); err != nil {
			return nil, err
		}
		info, err := pdf.Verify(dest)
		if err != nil {
			return nil, err
		}
		if info.Pages != pages {
			return nil, fmt.Errorf("tools: %s has %d pages, want %d", dest, info.Pages, pages)
		}
	case "pptx":
		err = pptx.Generate(rec, dest, opts)
	case "handout":
		err = handout.Generate(rec, dest, opts)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("tools: document written", "format", format, "file", dest, "pages", pages)
	return &GenerateResult{Format: format, Output: dest, Pages: pages}, nil
}
