// Package pptx renders a capture record as a PowerPoint deck: one slide
// per screenshot with the image full-bleed, the unit's notes on the
// notes page, and a transparent hyperlinked rectangle over every placed
// anchor.
//
// Slide geometry follows the screenshot: 100 pixels to the inch, so a
// 1600x900 capture gives a 16in x 9in slide.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/hazyhaar/stagecraft/capture"
	"github.com/hazyhaar/stagecraft/output"
)

// DefaultFilename is used when no output path is given.
const DefaultFilename = "presentation.pptx"

// emuPerPixel converts screenshot pixels to EMU at 100 px per inch.
const emuPerPixel = 914400 / 100

func emu(px float64) int64 {
	return int64(math.Round(px * emuPerPixel))
}

func esc(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

type rel struct {
	id, typ, target string
	external        bool
}

func relsXML(rels []rel) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"`, r.id, r.typ, esc(r.target))
		if r.external {
			b.WriteString(` TargetMode="External"`)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// deck accumulates the parts of the package in write order.
type deck struct {
	opts   output.Options
	names  []string
	parts  map[string][]byte
	media  map[string]string // screenshot path -> part name
	slides int
}

func (d *deck) add(name string, data []byte) {
	if _, ok := d.parts[name]; !ok {
		d.names = append(d.names, name)
	}
	d.parts[name] = data
}

func (d *deck) addString(name, s string) { d.add(name, []byte(s)) }

// Generate writes rec to dest.
func Generate(rec capture.Record, dest string, opts output.Options) error {
	opts.Defaults()
	pages := output.Pages(rec)
	if len(pages) == 0 {
		return output.ErrNoPages
	}

	d := &deck{opts: opts, parts: map[string][]byte{}, media: map[string]string{}}
	for _, p := range pages {
		if err := d.addPage(p); err != nil {
			return err
		}
	}
	d.finish(time.Now().UTC())

	var buf bytes.Buffer
	if err := d.write(&buf); err != nil {
		return fmt.Errorf("pptx: %w", err)
	}
	opts.Logger.Info("pptx: writing", "file", dest, "slides", d.slides)
	if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("pptx: write %s: %w", dest, err)
	}
	return nil
}

func (d *deck) addPage(p output.Page) error {
	log := d.opts.Logger
	path := d.opts.Resolve(p.Image)

	media, ok := d.media[path]
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("pptx: slide %d: %w", d.slides+1, err)
		}
		media = fmt.Sprintf("ppt/media/image%d.png", len(d.media)+1)
		d.media[path] = media
		d.add(media, data)
	}

	d.slides++
	n := d.slides
	log.Info("pptx: adding slide", "file", path, "slide", n)

	rels := []rel{
		{id: "rId1", typ: relSlideLayout, target: "../slideLayouts/slideLayout1.xml"},
		{id: "rId2", typ: relImage, target: "../media/" + media[len("ppt/media/"):]},
		{id: "rId3", typ: relNotesSlide, target: fmt.Sprintf("../notesSlides/notesSlide%d.xml", n)},
	}

	var sp strings.Builder
	fmt.Fprintf(&sp, `<p:pic><p:nvPicPr><p:cNvPr id="2" name="Screenshot %d" descr="%s"/>`, n, esc(p.Image))
	sp.WriteString(`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`)
	sp.WriteString(`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`)
	fmt.Fprintf(&sp, `<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, emu(d.opts.Width), emu(d.opts.Height))
	sp.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`)

	for i, l := range p.Links {
		rid := fmt.Sprintf("rId%d", 4+i)
		rels = append(rels, rel{id: rid, typ: relHyperlink, target: l.Href, external: true})
		log.Debug("pptx: adding link", "text", l.Text, "href", l.Href, "l", l.L, "t", l.T, "w", l.W, "h", l.H)

		fmt.Fprintf(&sp, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Link %d"><a:hlinkClick r:id="%s" tooltip="%s"/></p:cNvPr>`,
			3+i, i+1, rid, esc(l.Text))
		sp.WriteString(`<p:cNvSpPr/><p:nvPr/></p:nvSpPr>`)
		fmt.Fprintf(&sp, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
			emu(l.L), emu(l.T), emu(l.W), emu(l.H))
		sp.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`)
		sp.WriteString(`<a:solidFill><a:srgbClr val="FF0000"><a:alpha val="0"/></a:srgbClr></a:solidFill><a:ln><a:noFill/></a:ln></p:spPr>`)
		sp.WriteString(`<p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:endParaRPr lang="en-US"/></a:p></p:txBody></p:sp>`)
	}

	d.addString(fmt.Sprintf("ppt/slides/slide%d.xml", n), xmlHeader+
		`<p:sld xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`"><p:cSld><p:spTree>`+groupShape+sp.String()+
		`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	d.addString(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), relsXML(rels))

	d.addString(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), notesXML(p.Notes))
	d.addString(fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", n), relsXML([]rel{
		{id: "rId1", typ: relNotesMaster, target: "../notesMasters/notesMaster1.xml"},
		{id: "rId2", typ: relSlide, target: fmt.Sprintf("../slides/slide%d.xml", n)},
	}))
	return nil
}

// notesXML builds a notes page. Empty notes are written as a single
// newline, which PowerPoint shows as an empty notes box.
func notesXML(notes string) string {
	if notes == "" {
		notes = "\n"
	}
	var paras strings.Builder
	for _, line := range strings.Split(notes, "\n") {
		if line == "" {
			paras.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
			continue
		}
		fmt.Fprintf(&paras, `<a:p><a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r></a:p>`, esc(line))
	}

	return xmlHeader + `<p:notes xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` + groupShape +
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/>` +
		`<p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>` +
		`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/>` +
		`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>` +
		`<p:txBody><a:bodyPr/><a:lstStyle/>` + paras.String() + `</p:txBody></p:sp>` +
		`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`
}

// finish adds the presentation, masters, themes, properties and content
// types once every slide is known.
func (d *deck) finish(now time.Time) {
	n := d.slides

	presRels := []rel{
		{id: "rId1", typ: relSlideMaster, target: "slideMasters/slideMaster1.xml"},
		{id: "rId2", typ: relNotesMaster, target: "notesMasters/notesMaster1.xml"},
		{id: "rId3", typ: relTheme, target: "theme/theme1.xml"},
		{id: "rId4", typ: relPresProps, target: "presProps.xml"},
		{id: "rId5", typ: relViewProps, target: "viewProps.xml"},
		{id: "rId6", typ: relTableStyles, target: "tableStyles.xml"},
	}
	var sldIDs strings.Builder
	for i := 1; i <= n; i++ {
		rid := fmt.Sprintf("rId%d", 6+i)
		presRels = append(presRels, rel{id: rid, typ: relSlide, target: fmt.Sprintf("slides/slide%d.xml", i)})
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="%s"/>`, 255+i, rid)
	}

	d.addString("ppt/presentation.xml", xmlHeader+
		`<p:presentation xmlns:a="`+nsA+`" xmlns:r="`+nsR+`" xmlns:p="`+nsP+`" saveSubsetFonts="1">`+
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`+
		`<p:notesMasterIdLst><p:notesMasterId r:id="rId2"/></p:notesMasterIdLst>`+
		`<p:sldIdLst>`+sldIDs.String()+`</p:sldIdLst>`+
		fmt.Sprintf(`<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/>`, emu(d.opts.Width), emu(d.opts.Height))+
		`</p:presentation>`)
	d.addString("ppt/_rels/presentation.xml.rels", relsXML(presRels))

	d.addString("ppt/slideMasters/slideMaster1.xml", slideMasterXML)
	d.addString("ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels)
	d.addString("ppt/slideLayouts/slideLayout1.xml", slideLayoutXML)
	d.addString("ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels)
	d.addString("ppt/notesMasters/notesMaster1.xml", notesMasterXML)
	d.addString("ppt/notesMasters/_rels/notesMaster1.xml.rels", notesMasterRels)
	d.addString("ppt/theme/theme1.xml", themeXML("Slides"))
	d.addString("ppt/theme/theme2.xml", themeXML("Notes"))
	d.addString("ppt/presProps.xml", presPropsXML)
	d.addString("ppt/viewProps.xml", viewPropsXML)
	d.addString("ppt/tableStyles.xml", tableStylesXML)

	stamp := now.Format(time.RFC3339)
	d.addString("docProps/core.xml", xmlHeader+
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" `+
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" `+
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`+
		`<dc:title>`+esc(d.opts.Title)+`</dc:title><dc:creator>stagecraft</dc:creator>`+
		`<dcterms:created xsi:type="dcterms:W3CDTF">`+stamp+`</dcterms:created>`+
		`<dcterms:modified xsi:type="dcterms:W3CDTF">`+stamp+`</dcterms:modified>`+
		`</cp:coreProperties>`)
	d.addString("docProps/app.xml", appXML)
	d.addString("_rels/.rels", rootRels)

	var ct strings.Builder
	ct.WriteString(xmlHeader)
	ct.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	ct.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	ct.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	override := func(part, typ string) {
		fmt.Fprintf(&ct, `<Override PartName="/%s" ContentType="%s"/>`, part, typ)
	}
	override("ppt/presentation.xml", ctBase+"presentationml.presentation.main+xml")
	override("ppt/slideMasters/slideMaster1.xml", ctBase+"presentationml.slideMaster+xml")
	override("ppt/slideLayouts/slideLayout1.xml", ctBase+"presentationml.slideLayout+xml")
	override("ppt/notesMasters/notesMaster1.xml", ctBase+"presentationml.notesMaster+xml")
	override("ppt/theme/theme1.xml", ctBase+"theme+xml")
	override("ppt/theme/theme2.xml", ctBase+"theme+xml")
	override("ppt/presProps.xml", ctBase+"presentationml.presProps+xml")
	override("ppt/viewProps.xml", ctBase+"presentationml.viewProps+xml")
	override("ppt/tableStyles.xml", ctBase+"presentationml.tableStyles+xml")
	for i := 1; i <= n; i++ {
		override(fmt.Sprintf("ppt/slides/slide%d.xml", i), ctBase+"presentationml.slide+xml")
		override(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", i), ctBase+"presentationml.notesSlide+xml")
	}
	override("docProps/core.xml", "application/vnd.openxmlformats-package.core-properties+xml")
	override("docProps/app.xml", ctBase+"extended-properties+xml")
	ct.WriteString(`</Types>`)

	// [Content_Types].xml goes first in the archive.
	d.names = append([]string{"[Content_Types].xml"}, d.names...)
	d.parts["[Content_Types].xml"] = []byte(ct.String())
}

func (d *deck) write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range d.names {
		method := zip.Deflate
		if strings.HasPrefix(name, "ppt/media/") {
			method = zip.Store
		}
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := f.Write(d.parts[name]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return zw.Close()
}
