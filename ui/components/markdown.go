package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultWrap = 80

// Markdown renders completed agent replies with glamour. The renderer is
// rebuilt only when the wrap width changes.
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

// NewMarkdown uses a glamour standard style such as "dark" or "notty".
func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style}
}

// Render falls back to the raw text if glamour fails.
func (m *Markdown) Render(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return content
	}
	if width <= 0 {
		width = defaultWrap
	}
	if m.renderer == nil || m.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		m.renderer, m.width = r, width
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
