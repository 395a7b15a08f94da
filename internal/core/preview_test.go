package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThinkingPreview(t *testing.T) {
	cases := map[string]string{
		"Looking up projects":                      "Looking up projects",
		"\n\n  First line  \nsecond":               "First line",
		"# Planning\nbody":                         "Planning",
		"**Bold** and _soft_ words":                "Bold and soft words",
		"Check `go.mod` first":                     "Check go.mod first",
		"See [the docs](https://example.com) now":  "See the docs now",
		"![diagram](arch.png) Reviewing structure": "Reviewing structure",
		"- item one\n- item two":                   "item one",
		"> quoted thought":                         "quoted thought",
		"":                                         PreviewFallback,
		"   \n\t":                                  PreviewFallback,
		strings.Repeat("x", PreviewMaxWidth):       strings.Repeat("x", PreviewMaxWidth),
		strings.Repeat("x", PreviewMaxWidth+1):     PreviewFallback,
		strings.Repeat("思", PreviewMaxWidth/2+1):   PreviewFallback,
	}
	for in, want := range cases {
		assert.Equal(t, want, ThinkingPreview(in), "%q", in)
	}
}

func TestNormalizeForComparison(t *testing.T) {
	cases := map[string]string{
		"  Hello,   World!! ": "hello, world",
		"Done.":               "done",
		"完成。":                 "完成",
		"Really?!":            "really",
		"a\tb\nc":             "a b c",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeForComparison(in), "%q", in)
	}
}

func TestStripMarkdownCodeBlock(t *testing.T) {
	got := stripMarkdown("```go\nfmt.Println(1)\n```\nafter")
	assert.Contains(t, got, "fmt.Println(1)")
	assert.Contains(t, got, "after")
	assert.NotContains(t, got, "```")
}
