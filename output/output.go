// Package output turns a capture record into documents. The format
// packages (pdf, pptx, handout) all consume the flat page list built
// here, so they agree on which links are placed and how notes are
// trimmed.
package output

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/stagecraft/capture"
)

// ErrNoPages is returned when a record holds no screenshot at all.
var ErrNoPages = errors.New("output: record has no pages")

// Page is one screenshot with the notes and placed links of its unit.
type Page struct {
	Image string         `json:"image"`
	Notes string         `json:"notes,omitempty"`
	Links []capture.Link `json:"links"`
	// Unit is the index of the unit the screenshot belongs to.
	Unit int `json:"unit"`
}

// Pages flattens rec into one page per screenshot. Pages of the same
// unit share its notes (trimmed markdown, "" when blank) and its links,
// keeping only those with l > 0 and t > 0.
func Pages(rec capture.Record) []Page {
	var pages []Page
	for i, u := range rec {
		notes := strings.TrimSpace(u.SpeakerNotes.Text)
		links := make([]capture.Link, 0, len(u.Links))
		for _, l := range u.Links {
			if l.Placed() {
				links = append(links, l)
			}
		}
		for _, shot := range u.Screenshots {
			pages = append(pages, Page{Image: shot, Notes: notes, Links: links, Unit: i})
		}
	}
	return pages
}

// Options are shared by every generator.
type Options struct {
	// BaseDir resolves relative screenshot paths. Empty = working directory.
	BaseDir string

	// Width and Height of a page in screenshot pixels. Default: 1600x900.
	Width  float64
	Height float64

	// Title is written into document metadata. Default: "stagecraft".
	Title string

	Logger *slog.Logger
}

// Defaults fills zero values.
func (o *Options) Defaults() {
	if o.Width <= 0 {
		o.Width = 1600
	}
	if o.Height <= 0 {
		o.Height = 900
	}
	if o.Title == "" {
		o.Title = "stagecraft"
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Resolve returns the filesystem path of a screenshot identifier.
func (o Options) Resolve(image string) string {
	if o.BaseDir == "" || filepath.IsAbs(image) {
		return image
	}
	return filepath.Join(o.BaseDir, image)
}
