package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// slide is one rendered presentation slide before serialization.
type slide struct {
	title string
	lines []string
}

// partitionSlides distributes blocks across slides. Every heading opens
// a new slide titled with the heading text; non-heading blocks become
// body lines on the current slide. The document title always gets a
// slide of its own.
func partitionSlides(title string, blocks []Block) []slide {
	slides := []slide{{title: title}}
	current := &slides[0]

	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			slides = append(slides, slide{title: b.Text})
			current = &slides[len(slides)-1]
		case BlockCode:
			current.lines = append(current.lines, strings.Split(b.Text, "\n")...)
		default:
			current.lines = append(current.lines, b.Text)
		}
	}
	return slides
}

// BuildPPTX renders a title and parsed content blocks as a minimal
// PresentationML package with one shape per text line.
func BuildPPTX(title string, blocks []Block) ([]byte, int, error) {
	slides := partitionSlides(title, blocks)

	pkg := newOOXMLPackage()
	if err := pkg.addPart("[Content_Types].xml", pptxContentTypes(len(slides))); err != nil {
		return nil, 0, err
	}
	if err := pkg.addPart("_rels/.rels", packageRels("ppt/presentation.xml")); err != nil {
		return nil, 0, err
	}
	if err := pkg.addPart("ppt/presentation.xml", pptxPresentation(len(slides))); err != nil {
		return nil, 0, err
	}
	if err := pkg.addPart("ppt/_rels/presentation.xml.rels", pptxPresentationRels(len(slides))); err != nil {
		return nil, 0, err
	}
	for i, s := range slides {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", i+1)
		if err := pkg.addPart(name, pptxSlide(s)); err != nil {
			return nil, 0, err
		}
	}

	data, err := pkg.finish()
	if err != nil {
		return nil, 0, err
	}
	return data, len(slides), nil
}

func pptxContentTypes(slideCount int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	sb.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	sb.WriteString(`</Types>`)
	return sb.String()
}

func pptxPresentation(slideCount int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	sb.WriteString(`<p:sldIdLst>`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i)
	}
	sb.WriteString(`</p:sldIdLst>`)
	sb.WriteString(`<p:sldSz cx="12192000" cy="6858000"/>`)
	sb.WriteString(`</p:presentation>`)
	return sb.String()
}

func pptxPresentationRels(slideCount int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, i, i)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

func pptxSlide(s slide) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`)
	sb.WriteString(`<p:cSld><p:spTree>`)
	sb.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	writeShape := func(id int, name, text string, body bool) {
		fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/>`, id, name)
		sb.WriteString(`<p:txBody><a:bodyPr/>`)
		if body {
			for _, line := range strings.Split(text, "\n") {
				sb.WriteString(`<a:p><a:r><a:t>` + escapeXML(line) + `</a:t></a:r></a:p>`)
			}
		} else {
			sb.WriteString(`<a:p><a:r><a:t>` + escapeXML(text) + `</a:t></a:r></a:p>`)
		}
		sb.WriteString(`</p:txBody></p:sp>`)
	}

	writeShape(2, "Title", s.title, false)
	if len(s.lines) > 0 {
		writeShape(3, "Content", strings.Join(s.lines, "\n"), true)
	}

	sb.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return sb.String()
}

// PPTXContent is the extraction result for a presentation.
type PPTXContent struct {
	Text       string
	SlideCount int
}

// ExtractPPTX collects the drawing text of every ppt/slides/slideN.xml
// part, in slide order, separating slides with a blank line.
func ExtractPPTX(content []byte) (PPTXContent, error) {
	if len(content) == 0 {
		return PPTXContent{}, fmt.Errorf("empty pptx content")
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return PPTXContent{}, fmt.Errorf("open zip: %w", err)
	}

	var slideFiles []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slideFiles = append(slideFiles, f)
		}
	}
	if len(slideFiles) == 0 {
		return PPTXContent{}, fmt.Errorf("no slides found in presentation")
	}
	sort.Slice(slideFiles, func(i, j int) bool {
		return slideOrdinal(slideFiles[i].Name) < slideOrdinal(slideFiles[j].Name)
	})

	var text strings.Builder
	for _, f := range slideFiles {
		slideText, err := extractSlideText(f)
		if err != nil {
			return PPTXContent{}, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if slideText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(slideText)
	}

	return PPTXContent{
		Text:       strings.TrimSpace(text.String()),
		SlideCount: len(slideFiles),
	}, nil
}

// slideOrdinal parses the N out of ppt/slides/slideN.xml so lexical zip
// ordering (slide10 before slide2) does not scramble the output.
func slideOrdinal(name string) int {
	name = strings.TrimPrefix(name, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	n := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// extractSlideText streams one slide part and joins its a:t runs, with
// one line per a:p paragraph.
func extractSlideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var (
		decoder = xml.NewDecoder(rc)
		lines   []string
		current strings.Builder
		inText  bool
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(current.String()); line != "" {
					lines = append(lines, line)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if line := strings.TrimSpace(current.String()); line != "" {
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n"), nil
}
