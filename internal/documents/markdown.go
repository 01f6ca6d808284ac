package documents

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind identifies the structural role of a parsed content block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockListItem
	BlockCode
)

// Block is a flattened unit of document content. Heading blocks carry
// a level between 1 and 6; other kinds leave Level at zero.
type Block struct {
	Kind  BlockKind
	Level int
	Text  string
}

// ParseBlocks parses Markdown source into a flat sequence of blocks.
// Inline formatting is discarded; only the text content and the block
// structure survive, which is what the document writers consume.
func ParseBlocks(source []byte) []Block {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var blocks []Block
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			blocks = append(blocks, Block{
				Kind:  BlockHeading,
				Level: node.Level,
				Text:  collectText(node, source),
			})
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			// Paragraphs inside list items are reported as list items.
			if insideListItem(node) {
				blocks = append(blocks, Block{
					Kind: BlockListItem,
					Text: collectText(node, source),
				})
			} else {
				blocks = append(blocks, Block{
					Kind: BlockParagraph,
					Text: collectText(node, source),
				})
			}
			return ast.WalkSkipChildren, nil
		case *ast.TextBlock:
			if insideListItem(node) {
				blocks = append(blocks, Block{
					Kind: BlockListItem,
					Text: collectText(node, source),
				})
				return ast.WalkSkipChildren, nil
			}
		case *ast.FencedCodeBlock:
			blocks = append(blocks, Block{
				Kind: BlockCode,
				Text: collectLines(node, source),
			})
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			blocks = append(blocks, Block{
				Kind: BlockCode,
				Text: collectLines(node, source),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return blocks
}

// collectText gathers the raw text of every inline descendant of n.
func collectText(n ast.Node, source []byte) string {
	var buf strings.Builder
	ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && child.Kind() == ast.KindText {
			segment := child.(*ast.Text)
			buf.Write(segment.Segment.Value(source))
			if segment.SoftLineBreak() || segment.HardLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}

// collectLines gathers the literal lines of a code block node.
func collectLines(n ast.Node, source []byte) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func insideListItem(n ast.Node) bool {
	for parent := n.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Kind() == ast.KindListItem {
			return true
		}
	}
	return false
}
