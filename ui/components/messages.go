package components

import (
	"strings"

	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/ui/styles"
)

const streamCursor = "▋"

// RenderMessages draws the whole conversation. Running steps show the
// current spinner frame.
func RenderMessages(messages []models.Message, md *Markdown, spinnerFrame string, width int) string {
	var b strings.Builder

	// border, padding and margin of the message styles
	contentWidth := width - 6
	if width <= 0 {
		contentWidth = 0
	}

	for _, msg := range messages {
		switch msg.Role {
		case models.System:
			style := styles.SystemStyle()
			switch {
			case msg.Status == models.StatusError:
				style = styles.SystemErrorStyle()
			case isBanner(msg.Content):
				style = styles.BannerStyle()
			}
			b.WriteString(style.Render(msg.Content) + "\n\n")
		case models.User:
			b.WriteString(styles.UserStyle().Render("> "+msg.Content) + "\n\n")
		case models.Agent:
			b.WriteString(renderAgent(msg, md, spinnerFrame, contentWidth) + "\n\n")
		}
	}

	return b.String()
}

func renderAgent(msg models.Message, md *Markdown, spinnerFrame string, width int) string {
	var parts []string
	if msg.Content == "" {
		if thinking := RenderThinking(msg, spinnerFrame); thinking != "" {
			parts = append(parts, thinking)
		}
	}

	switch {
	case msg.Content == "":
	case msg.Status == models.StatusCompleted && md != nil:
		parts = append(parts, md.Render(msg.Content, width))
	case msg.Status == models.StatusStreaming:
		parts = append(parts, msg.Content+styles.CursorStyle().Render(streamCursor))
	default:
		parts = append(parts, msg.Content)
	}

	if msg.Status.Terminal() {
		if summary := RenderToolSummary(msg.ToolHistory); summary != "" {
			parts = append(parts, summary)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, styles.HintStyle().Render("..."))
	}

	style := styles.AgentStyle()
	if msg.Status == models.StatusError {
		style = styles.AgentErrorStyle()
	}
	return style.Render(strings.Join(parts, "\n"))
}

func isBanner(content string) bool {
	return strings.HasPrefix(content, "-- ") && strings.HasSuffix(content, " --")
}
