package documents

import (
	"strings"
	"testing"
)

func TestBuildAndExtractDOCX(t *testing.T) {
	blocks := []Block{
		{Kind: BlockHeading, Level: 2, Text: "Background"},
		{Kind: BlockParagraph, Text: "This is the <first> paragraph & friends."},
		{Kind: BlockListItem, Text: "bullet point"},
	}

	data, paragraphs, err := BuildDOCX("Quarterly Report", blocks)
	if err != nil {
		t.Fatalf("BuildDOCX failed: %v", err)
	}
	if paragraphs != 4 {
		t.Errorf("expected 4 paragraphs, got %d", paragraphs)
	}

	extracted, err := ExtractDOCX(data)
	if err != nil {
		t.Fatalf("ExtractDOCX failed: %v", err)
	}
	if extracted.ParagraphCount != 4 {
		t.Errorf("expected 4 extracted paragraphs, got %d", extracted.ParagraphCount)
	}
	if !strings.Contains(extracted.Text, "Quarterly Report") {
		t.Errorf("title missing from extracted text: %q", extracted.Text)
	}
	if !strings.Contains(extracted.Text, "This is the <first> paragraph & friends.") {
		t.Errorf("escaped characters did not round-trip: %q", extracted.Text)
	}
	if len(extracted.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %v", extracted.Headings)
	}
	if extracted.Headings[0] != "Quarterly Report" || extracted.Headings[1] != "Background" {
		t.Errorf("unexpected headings: %v", extracted.Headings)
	}
}

func TestBuildDOCXCodeBlockLines(t *testing.T) {
	blocks := []Block{
		{Kind: BlockCode, Text: "line one\nline two"},
	}

	data, paragraphs, err := BuildDOCX("Snippets", blocks)
	if err != nil {
		t.Fatalf("BuildDOCX failed: %v", err)
	}
	// Title plus one paragraph per code line.
	if paragraphs != 3 {
		t.Errorf("expected 3 paragraphs, got %d", paragraphs)
	}

	extracted, err := ExtractDOCX(data)
	if err != nil {
		t.Fatalf("ExtractDOCX failed: %v", err)
	}
	if !strings.Contains(extracted.Text, "line one") || !strings.Contains(extracted.Text, "line two") {
		t.Errorf("code lines missing: %q", extracted.Text)
	}
}

func TestExtractDOCXRejectsBadInput(t *testing.T) {
	if _, err := ExtractDOCX(nil); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := ExtractDOCX([]byte("not a zip archive")); err == nil {
		t.Error("expected error for non-zip content")
	}
}

func TestExtractDOCXMissingDocumentPart(t *testing.T) {
	pkg := newOOXMLPackage()
	if err := pkg.addPart("unrelated.txt", "hello"); err != nil {
		t.Fatalf("addPart failed: %v", err)
	}
	data, err := pkg.finish()
	if err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	_, err = ExtractDOCX(data)
	if err == nil || !strings.Contains(err.Error(), "word/document.xml") {
		t.Errorf("expected missing document.xml error, got %v", err)
	}
}
