// Package handout renders a capture record as a single HTML page: every
// screenshot with a clickable image map for its links, followed by the
// speaker notes rendered from markdown.
package handout

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/output"
)

// DefaultFilename is used when no output path is given.
const DefaultFilename = "presentation.html"

// Renderer converts notes markdown to sanitised HTML and lays pages out.
// It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer creates a Renderer with GitHub-flavoured markdown and the
// bluemonday UGC policy.
func NewRenderer() *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// NotesHTML renders markdown notes as sanitised HTML.
func (r *Renderer) NotesHTML(notes string) (template.HTML, error) {
	if notes == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("handout: markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

type areaView struct {
	Coords string
	Href   string
	Title  string
}

type pageView struct {
	Number int
	Image  string
	Alt    string
	Areas  []areaView
	Notes  template.HTML
}

var pageTmpl = template.Must(template.New("handout").Parse(`<!DOCTYPE html>
<html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem auto;padding:0 1rem;color:#222;background:#fafafa;max-width:{{.Width}}px}
.page{background:#fff;border:1px solid #e0e0e0;border-radius:6px;margin-bottom:2rem;overflow-x:auto}
.page img{display:block}
.notes{padding:1rem;border-top:1px solid #e0e0e0}
.number{font-size:.8rem;color:#666;padding:.5rem 1rem}
</style></head><body>
<h1>{{.Title}}</h1>
{{- range .Pages}}
<section class="page" id="page-{{.Number}}">
<div class="number">{{.Number}}</div>
<img src="{{.Image}}" alt="{{.Alt}}" width="{{$.Width}}" height="{{$.Height}}"{{if .Areas}} usemap="#links-{{.Number}}"{{end}}>
{{- if .Areas}}
<map name="links-{{.Number}}">
{{- range .Areas}}
<area shape="rect" coords="{{.Coords}}" href="{{.Href}}" title="{{.Title}}" alt="{{.Title}}">
{{- end}}
</map>
{{- end}}
{{- if .Notes}}
<div class="notes">{{.Notes}}</div>
{{- end}}
</section>
{{- end}}
</body></html>
`))

// Render writes the handout for rec to w. imageURL maps a screenshot
// identifier to the src used in the page.
func (r *Renderer) Render(w io.Writer, rec capture.Record, opts output.Options, imageURL func(string) string) error {
	opts.Defaults()
	pages := output.Pages(rec)
	if len(pages) == 0 {
		return output.ErrNoPages
	}

	views := make([]pageView, len(pages))
	for i, p := range pages {
		notes, err := r.NotesHTML(p.Notes)
		if err != nil {
			return err
		}
		v := pageView{
			Number: i + 1,
			Image:  imageURL(p.Image),
			Alt:    filepath.Base(p.Image),
			Notes:  notes,
		}
		for _, l := range p.Links {
			v.Areas = append(v.Areas, areaView{
				Coords: fmt.Sprintf("%d,%d,%d,%d", int(l.L), int(l.T), int(l.L+l.W), int(l.T+l.H)),
				Href:   l.Href,
				Title:  l.Text,
			})
		}
		views[i] = v
	}

	return pageTmpl.Execute(w, struct {
		Title  string
		Width  int
		Height int
		Pages  []pageView
	}{
		Title:  opts.Title,
		Width:  int(opts.Width),
		Height: int(opts.Height),
		Pages:  views,
	})
}

// Generate writes the handout for rec to dest. Screenshots are referenced
// relative to dest's directory when possible.
func Generate(rec capture.Record, dest string, opts output.Options) error {
	opts.Defaults()
	destDir, err := filepath.Abs(filepath.Dir(dest))
	if err != nil {
		return fmt.Errorf("handout: %w", err)
	}

	imageURL := func(image string) string {
		path, err := filepath.Abs(opts.Resolve(image))
		if err != nil {
			return filepath.ToSlash(image)
		}
		if rel, err := filepath.Rel(destDir, path); err == nil {
			return filepath.ToSlash(rel)
		}
		return filepath.ToSlash(path)
	}

	var buf bytes.Buffer
	if err := NewRenderer().Render(&buf, rec, opts, imageURL); err != nil {
		return err
	}
	opts.Logger.Info("handout: writing", "file", dest, "bytes", buf.Len())
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("handout: write %s: %w", dest, err)
	}
	return nil
}
