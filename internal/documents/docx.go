package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxContentTypes = xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

// BuildDOCX renders a title and parsed content blocks as a minimal
// WordprocessingML package. Headings carry pStyle values of the form
// HeadingN so the extractor on the read side recognizes them.
func BuildDOCX(title string, blocks []Block) ([]byte, int, error) {
	var body strings.Builder
	paragraphs := 0

	writePara := func(style, text string) {
		body.WriteString(`<w:p>`)
		if style != "" {
			body.WriteString(`<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`)
		}
		body.WriteString(`<w:r><w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r>`)
		body.WriteString(`</w:p>`)
		paragraphs++
	}

	writePara("Heading1", title)
	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			level := b.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			writePara(fmt.Sprintf("Heading%d", level), b.Text)
		case BlockListItem:
			writePara("ListParagraph", b.Text)
		case BlockCode:
			// One paragraph per code line keeps line breaks intact.
			for _, line := range strings.Split(b.Text, "\n") {
				writePara("Code", line)
			}
		default:
			writePara("", b.Text)
		}
	}

	document := xmlHeader +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `<w:sectPr/></w:body></w:document>`

	pkg := newOOXMLPackage()
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", packageRels("word/document.xml")},
		{"word/document.xml", document},
	}
	for _, part := range parts {
		if err := pkg.addPart(part.name, part.content); err != nil {
			return nil, 0, err
		}
	}
	data, err := pkg.finish()
	if err != nil {
		return nil, 0, err
	}
	return data, paragraphs, nil
}

// DOCXContent is the extraction result for a Word document.
type DOCXContent struct {
	Text           string
	ParagraphCount int
	Headings       []string
}

// ExtractDOCX streams through word/document.xml and collects paragraph
// text. Paragraphs styled HeadingN are additionally reported as headings.
func ExtractDOCX(content []byte) (DOCXContent, error) {
	if len(content) == 0 {
		return DOCXContent{}, fmt.Errorf("empty docx content")
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return DOCXContent{}, fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return DOCXContent{}, fmt.Errorf("missing word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return DOCXContent{}, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return parseWordBody(rc)
}

// parseWordBody walks the WordprocessingML token stream without building
// a DOM, accumulating run text per paragraph.
func parseWordBody(r io.Reader) (DOCXContent, error) {
	var (
		result    DOCXContent
		text      strings.Builder
		decoder   = xml.NewDecoder(r)
		inPara    bool
		inRun     bool
		style     string
		paraParts []string
	)

	endParagraph := func() {
		inPara = false
		paraText := strings.TrimSpace(strings.Join(paraParts, ""))
		if paraText == "" {
			return
		}
		result.ParagraphCount++
		if strings.HasPrefix(style, "Heading") {
			result.Headings = append(result.Headings, paraText)
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(paraText)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return DOCXContent{}, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				style = ""
				paraParts = nil
			case "pStyle":
				for _, attr := range t.Attr {
					if attr.Name.Local == "val" {
						style = attr.Value
					}
				}
			case "r":
				inRun = true
			case "tab":
				if inPara {
					paraParts = append(paraParts, "\t")
				}
			case "br":
				if inPara {
					paraParts = append(paraParts, "\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "p":
				endParagraph()
			}
		case xml.CharData:
			if inPara && inRun {
				paraParts = append(paraParts, string(t))
			}
		}
	}

	result.Text = strings.TrimSpace(text.String())
	return result, nil
}
