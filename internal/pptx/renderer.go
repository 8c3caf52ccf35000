// Package pptx writes PowerPoint files directly as OOXML parts in a zip
// container. Only the parts a minimal viewer needs are emitted: one master,
// one layout, one theme, and a text-box based slide per input slide.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"slidecraft/pkg/domain"
)

// Slide geometry in EMUs, 16:9.
const (
	slideWidth  = 12192000
	slideHeight = 6858000

	marginX      = 838200
	titleTop     = 457200
	titleHeight  = 1143000
	bodyTop      = 1828800
	bodyHeight   = 4343400
	columnGap    = 457200
	contentWidth = slideWidth - 2*marginX
)

// Renderer turns slides into a .pptx file using one theme's colors and fonts.
type Renderer struct {
	theme  domain.Theme
	colors domain.ColorScheme
	fonts  domain.FontSettings
}

// NewRenderer builds a renderer for the given theme.
func NewRenderer(theme domain.Theme) *Renderer {
	return &Renderer{
		theme:  theme,
		colors: domain.ColorSchemeFor(theme),
		fonts:  domain.DefaultFontSettings(),
	}
}

// NewRendererWithStyle builds a renderer with explicit palette and fonts,
// overriding the theme defaults.
func NewRendererWithStyle(theme domain.Theme, colors domain.ColorScheme, fonts domain.FontSettings) *Renderer {
	return &Renderer{theme: theme, colors: colors, fonts: fonts}
}

// Render produces the complete .pptx file contents.
func (r *Renderer) Render(topic string, slides []domain.Slide) ([]byte, error) {
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides to render")
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(len(slides))},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", coreXML(topic, time.Now().UTC())},
		{"docProps/app.xml", appXML(len(slides))},
		{"ppt/presentation.xml", presentationXML(len(slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(slides))},
		{"ppt/theme/theme1.xml", r.themeXML()},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
	}
	for i, slide := range slides {
		parts = append(parts,
			struct {
				name    string
				content string
			}{fmt.Sprintf("ppt/slides/slide%d.xml", i+1), r.slideXML(slide)},
			struct {
				name    string
				content string
			}{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRelsXML},
		)
	}
	for _, part := range parts {
		f, err := w.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", part.name, err)
		}
		if _, err := f.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("write part %s: %w", part.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// slideXML builds one slide part from the slide's layout and text.
func (r *Renderer) slideXML(slide domain.Slide) string {
	var shapes strings.Builder
	id := 2

	switch slide.Layout {
	case domain.LayoutTitle:
		shapes.WriteString(r.textBox(id, marginX, 2057400, contentWidth, titleHeight,
			[]paragraph{{text: slide.Title, size: r.fonts.TitleSize, bold: true, color: r.colors.PrimaryColor, align: "ctr"}}))
		id++
		if slide.Content != "" {
			shapes.WriteString(r.textBox(id, marginX, 3429000, contentWidth, 914400,
				[]paragraph{{text: slide.Content, size: r.fonts.BodySize + 6, color: r.colors.SecondaryColor, align: "ctr"}}))
			id++
		}
	case domain.LayoutTwoColumn:
		shapes.WriteString(r.titleShape(id, slide.Title))
		id++
		columnWidth := (contentWidth - columnGap) / 2
		shapes.WriteString(r.textBox(id, marginX, bodyTop, columnWidth, bodyHeight, r.bodyParagraphs(slide.LeftColumn)))
		id++
		shapes.WriteString(r.textBox(id, marginX+columnWidth+columnGap, bodyTop, columnWidth, bodyHeight, r.bodyParagraphs(slide.RightColumn)))
		id++
	case domain.LayoutContentWithImage:
		shapes.WriteString(r.titleShape(id, slide.Title))
		id++
		columnWidth := (contentWidth - columnGap) / 2
		shapes.WriteString(r.textBox(id, marginX, bodyTop, columnWidth, bodyHeight, r.bodyParagraphs(slide.Content)))
		id++
		placeholder := slide.ImagePlaceholder
		if placeholder == "" {
			placeholder = "Image"
		}
		shapes.WriteString(r.imageFrame(id, marginX+columnWidth+columnGap, bodyTop, columnWidth, bodyHeight, placeholder))
		id++
	default:
		shapes.WriteString(r.titleShape(id, slide.Title))
		id++
		paragraphs := make([]paragraph, 0, len(slide.BulletPoints))
		for _, bullet := range slide.BulletPoints {
			paragraphs = append(paragraphs, paragraph{text: bullet, size: r.fonts.BodySize, color: r.colors.TextColor, bullet: true})
		}
		if len(paragraphs) == 0 {
			paragraphs = r.bodyParagraphs(slide.Content)
		}
		shapes.WriteString(r.textBox(id, marginX, bodyTop, contentWidth, bodyHeight, paragraphs))
		id++
	}

	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="` + hexColor(r.colors.BackgroundColor) + `"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>
<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		shapes.String() +
		`</p:spTree></p:cSld><p:clrMapOvr><a:overrideClrMapping bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/></p:clrMapOvr></p:sld>`
}

// paragraph is one rendered line of text inside a shape.
type paragraph struct {
	text   string
	size   int
	bold   bool
	bullet bool
	color  string
	align  string
}

func (r *Renderer) titleShape(id int, title string) string {
	return r.textBox(id, marginX, titleTop, contentWidth, titleHeight,
		[]paragraph{{text: title, size: r.fonts.TitleSize - 8, bold: true, color: r.colors.PrimaryColor}})
}

// bodyParagraphs splits free text into paragraphs, one per line.
func (r *Renderer) bodyParagraphs(text string) []paragraph {
	lines := strings.Split(text, "\n")
	paragraphs := make([]paragraph, 0, len(lines))
	for _, line := range lines {
		paragraphs = append(paragraphs, paragraph{text: line, size: r.fonts.BodySize, color: r.colors.TextColor})
	}
	if len(paragraphs) == 0 {
		paragraphs = append(paragraphs, paragraph{size: r.fonts.BodySize, color: r.colors.TextColor})
	}
	return paragraphs
}

// textBox renders a non-placeholder text shape at the given EMU rectangle.
func (r *Renderer) textBox(id, x, y, w, h int, paragraphs []paragraph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, id)
	fmt.Fprintf(&sb, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, w, h)
	sb.WriteString(`<p:txBody><a:bodyPr wrap="square" rtlCol="0"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	for _, para := range paragraphs {
		sb.WriteString(r.paragraphXML(para))
	}
	sb.WriteString(`</p:txBody></p:sp>`)
	return sb.String()
}

func (r *Renderer) paragraphXML(para paragraph) string {
	var sb strings.Builder
	sb.WriteString(`<a:p><a:pPr`)
	if para.align != "" {
		fmt.Fprintf(&sb, ` algn="%s"`, para.align)
	}
	sb.WriteString(`>`)
	if para.bullet {
		sb.WriteString(`<a:buChar char="•"/>`)
	} else {
		sb.WriteString(`<a:buNone/>`)
	}
	sb.WriteString(`</a:pPr>`)
	if para.text != "" {
		font := r.fonts.BodyFont
		if para.bold {
			font = r.fonts.TitleFont
		}
		fmt.Fprintf(&sb, `<a:r><a:rPr lang="en-US" sz="%d" b="%d" dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:latin typeface="%s"/></a:rPr><a:t>%s</a:t></a:r>`,
			para.size*100, boolAttr(para.bold), hexColor(para.color), escapeXML(font), escapeXML(para.text))
	}
	sb.WriteString(`</a:p>`)
	return sb.String()
}

// imageFrame renders the image area as an accent-filled rectangle carrying
// the placeholder description, so decks without resolved images still show
// what belongs there.
func (r *Renderer) imageFrame(id, x, y, w, h int, description string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="ImagePlaceholder %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, id)
	fmt.Fprintf(&sb, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`, x, y, w, h)
	fmt.Fprintf(&sb, `<a:solidFill><a:srgbClr val="%s"><a:alpha val="20000"/></a:srgbClr></a:solidFill><a:ln w="12700"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:ln></p:spPr>`,
		hexColor(r.colors.AccentColor), hexColor(r.colors.SecondaryColor))
	sb.WriteString(`<p:txBody><a:bodyPr wrap="square" anchor="ctr" rtlCol="0"/><a:lstStyle/>`)
	sb.WriteString(r.paragraphXML(paragraph{text: "[" + description + "]", size: r.fonts.BodySize - 2, color: r.colors.SecondaryColor, align: "ctr"}))
	sb.WriteString(`</p:txBody></p:sp>`)
	return sb.String()
}

func boolAttr(b bool) int {
	if b {
		return 1
	}
	return 0
}

// hexColor strips the leading '#' expected in the scheme values.
func hexColor(c string) string {
	c = strings.TrimPrefix(c, "#")
	if len(c) != 6 {
		return "000000"
	}
	return strings.ToUpper(c)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}
