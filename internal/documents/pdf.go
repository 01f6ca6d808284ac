package documents

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"
)

// BuildPDF renders a title and parsed content blocks as a PDF document
// on the requested page size (A4, Letter, or Legal).
func BuildPDF(title string, blocks []Block, pageSize string) ([]byte, int, error) {
	doc := gofpdf.New("P", "mm", pageSize, "")
	translate := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetTitle(title, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 9, translate(title), "", "L", false)
	doc.Ln(4)

	for _, b := range blocks {
		switch b.Kind {
		case BlockHeading:
			size := 16.0 - 1.5*float64(b.Level-1)
			if size < 10 {
				size = 10
			}
			doc.SetFont("Helvetica", "B", size)
			doc.Ln(2)
			doc.MultiCell(0, 7, translate(b.Text), "", "L", false)
			doc.Ln(1)
		case BlockListItem:
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 6, translate("- "+b.Text), "", "L", false)
		case BlockCode:
			doc.SetFont("Courier", "", 10)
			for _, line := range strings.Split(b.Text, "\n") {
				doc.MultiCell(0, 5, translate(line), "", "L", false)
			}
			doc.Ln(2)
		default:
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 6, translate(b.Text), "", "L", false)
			doc.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), doc.PageCount(), nil
}

// PDFContent is the extraction result for a PDF document.
type PDFContent struct {
	Text      string
	PageCount int
}

// ExtractPDF extracts plain text page by page. Pages whose text cannot
// be decoded are skipped rather than failing the whole document. The
// parser panics on some crafted inputs, so malformed documents are
// recovered into an ordinary error.
func ExtractPDF(content []byte) (extracted PDFContent, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			extracted = PDFContent{}
			err = fmt.Errorf("malformed pdf content: %v", rec)
		}
	}()

	if len(content) == 0 {
		return PDFContent{}, fmt.Errorf("empty pdf content")
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return PDFContent{}, fmt.Errorf("open pdf: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}

	return PDFContent{
		Text:      strings.TrimSpace(text.String()),
		PageCount: r.NumPage(),
	}, nil
}
