package extractor

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown strips Markdown formatting by walking the goldmark AST and
// keeping only text content, one blank line between blocks. Images count as
// skipped elements; their alt text is not extracted.
func extractMarkdown(src []byte) (string, int, error) {
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	skipped := 0

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Separate block-level nodes so headings and paragraphs do not
			// run together.
			if n.Type() == ast.TypeBlock && sb.Len() > 0 {
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.AutoLink:
			sb.Write(t.URL(src))
		case *ast.Image:
			skipped++
			return ast.WalkSkipChildren, nil
		case *ast.ThematicBreak:
			skipped++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("walking markdown ast: %w", err)
	}

	return sb.String(), skipped, nil
}
