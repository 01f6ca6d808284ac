package documents

import (
	"testing"
)

func TestParseBlocksStructure(t *testing.T) {
	source := `# Overview

Some introduction text.

## Details

- first item
- second item

` + "```" + `
code line one
code line two
` + "```" + `

Closing paragraph.`

	blocks := ParseBlocks([]byte(source))

	expected := []Block{
		{Kind: BlockHeading, Level: 1, Text: "Overview"},
		{Kind: BlockParagraph, Text: "Some introduction text."},
		{Kind: BlockHeading, Level: 2, Text: "Details"},
		{Kind: BlockListItem, Text: "first item"},
		{Kind: BlockListItem, Text: "second item"},
		{Kind: BlockCode, Text: "code line one\ncode line two"},
		{Kind: BlockParagraph, Text: "Closing paragraph."},
	}

	if len(blocks) != len(expected) {
		t.Fatalf("expected %d blocks, got %d: %+v", len(expected), len(blocks), blocks)
	}
	for i, want := range expected {
		got := blocks[i]
		if got.Kind != want.Kind || got.Level != want.Level || got.Text != want.Text {
			t.Errorf("block %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestParseBlocksInlineFormatting(t *testing.T) {
	blocks := ParseBlocks([]byte("Some **bold** and *italic* text."))

	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != "Some bold and italic text." {
		t.Errorf("unexpected text: %q", blocks[0].Text)
	}
}

func TestParseBlocksHeadingLevels(t *testing.T) {
	source := "# One\n## Two\n### Three\n#### Four\n##### Five\n###### Six\n"
	blocks := ParseBlocks([]byte(source))

	if len(blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if b.Kind != BlockHeading {
			t.Errorf("block %d: expected heading, got kind %d", i, b.Kind)
		}
		if b.Level != i+1 {
			t.Errorf("block %d: expected level %d, got %d", i, i+1, b.Level)
		}
	}
}

func TestParseBlocksEmpty(t *testing.T) {
	if blocks := ParseBlocks(nil); len(blocks) != 0 {
		t.Errorf("expected no blocks for empty input, got %+v", blocks)
	}
	if blocks := ParseBlocks([]byte("   \n\n  ")); len(blocks) != 0 {
		t.Errorf("expected no blocks for whitespace input, got %+v", blocks)
	}
}
