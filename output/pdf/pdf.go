// Package pdf renders a capture record as a PDF: one full-bleed page per
// screenshot, a URI link over every placed anchor, a sticky note on every
// page that has speaker notes, and all notes embedded again as one
// markdown attachment.
package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/output"
)

// DefaultFilename is used when no output path is given.
const DefaultFilename = "presentation.pdf"

// NotesFilename names the embedded speaker notes attachment.
const NotesFilename = "speaker-notes.md"

// Generate writes rec to dest. Page units are points, one point per
// screenshot pixel.
func Generate(rec capture.Record, dest string, opts output.Options) error {
	opts.Defaults()
	log := opts.Logger

	pages := output.Pages(rec)
	if len(pages) == 0 {
		return output.ErrNoPages
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: opts.Width, Ht: opts.Height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(opts.Title, true)
	doc.SetCreator("stagecraft", true)

	for i, p := range pages {
		path := opts.Resolve(p.Image)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("pdf: page %d: %w", i+1, err)
		}
		log.Info("pdf: adding page", "file", path)

		doc.AddPage()
		doc.ImageOptions(path, 0, 0, opts.Width, opts.Height, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		for _, l := range p.Links {
			log.Debug("pdf: adding link", "text", l.Text, "href", l.Href, "l", l.L, "t", l.T, "w", l.W, "h", l.H)
			doc.LinkString(l.L, l.T, l.W, l.H, l.Href)
		}

		if err := doc.Error(); err != nil {
			return fmt.Errorf("pdf: page %d: %w", i+1, err)
		}
	}

	if notes := notesDocument(pages); notes != "" {
		doc.SetAttachments([]fpdf.Attachment{{
			Content:     []byte(notes),
			Filename:    NotesFilename,
			Description: "Speaker notes",
		}})
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	data := buf.Bytes()

	// fpdf has no valid sticky note, so pdfcpu adds them to the rendered
	// document.
	if m := noteAnnotations(pages, opts.Height); len(m) > 0 {
		log.Debug("pdf: annotating notes", "pages", len(m))
		var out bytes.Buffer
		if err := api.AddAnnotationsMap(bytes.NewReader(data), &out, m, nil); err != nil {
			return fmt.Errorf("pdf: annotate notes: %w", err)
		}
		data = out.Bytes()
	}

	log.Info("pdf: writing", "file", dest, "pages", len(pages))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("pdf: write %s: %w", dest, err)
	}
	return nil
}

// noteAnnotations builds one closed text annotation per page with notes,
// keyed by 1-based page number. The icon sits in the top left corner.
func noteAnnotations(pages []output.Page, height float64) map[int][]model.AnnotationRenderer {
	m := map[int][]model.AnnotationRenderer{}
	for i, p := range pages {
		if p.Notes == "" {
			continue
		}
		rect := types.NewRectangle(8, height-32, 32, height-8)
		m[i+1] = []model.AnnotationRenderer{model.NewTextAnnotation(
			*rect, 0, p.Notes, fmt.Sprintf("note-%d", i+1), "",
			model.AnnNoZoom|model.AnnNoRotate, nil, "Speaker notes", nil, nil, "", "",
			0, 0, 0, false, "Note",
		)}
	}
	return m
}

// notesDocument collects the notes of every page that has some, under a
// heading carrying the page number.
func notesDocument(pages []output.Page) string {
	var b strings.Builder
	for i, p := range pages {
		if p.Notes == "" {
			continue
		}
		fmt.Fprintf(&b, "## Page %d\n\n%s\n\n", i+1, p.Notes)
	}
	return b.String()
}

// Info describes a generated PDF.
type Info struct {
	Pages      int `json:"pages"`
	ImagePages int `json:"image_pages"`
}

// Verify reads the PDF at path back, validates it and reports its page
// count and how many pages carry an image.
func Verify(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("pdf: verify: %w", err)
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return Info{}, fmt.Errorf("pdf: verify: pdfcpu read: %w", err)
	}

	info := Info{Pages: ctx.PageCount}
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				info.ImagePages++
			}
		}
	}
	return info, nil
}
