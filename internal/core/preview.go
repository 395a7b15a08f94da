package core

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	// PreviewFallback replaces previews that are empty or too wide to show.
	PreviewFallback = "Analyzing request..."
	// PreviewMaxWidth is the widest preview shown, in terminal cells.
	PreviewMaxWidth = 160
)

var (
	markdown         = goldmark.New()
	whitespaceRun    = regexp.MustCompile(`\s+`)
	trailingPunctRun = regexp.MustCompile(`[.!?:;。！？]+$`)
)

// ThinkingPreview derives the one-line thought preview from all thinking text
// received so far.
func ThinkingPreview(raw string) string {
	preview := strings.TrimSpace(firstLine(stripMarkdown(raw)))
	if preview == "" || runewidth.StringWidth(preview) > PreviewMaxWidth {
		return PreviewFallback
	}
	return preview
}

// firstContentLine is the first non-empty line of content with markdown removed.
func firstContentLine(content string) string {
	return strings.TrimSpace(firstLine(stripMarkdown(content)))
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// normalizeForComparison folds case, whitespace and trailing punctuation so a
// thought that merely restates the answer's first line can be recognised.
func normalizeForComparison(value string) string {
	value = strings.ToLower(value)
	value = whitespaceRun.ReplaceAllString(value, " ")
	value = strings.TrimSpace(value)
	value = trailingPunctRun.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}

// stripMarkdown renders the plain text of src, one line per block.
func stripMarkdown(src string) string {
	if src == "" {
		return ""
	}
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
