package components

import (
	"strings"

	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/ui/styles"
)

func stepIcon(status models.ItemStatus, spinnerFrame string) string {
	switch status {
	case models.ItemCompleted:
		return styles.StepCompletedStyle().Render("✓")
	case models.ItemFailed:
		return styles.StepFailedStyle().Render("✗")
	}
	if strings.TrimSpace(spinnerFrame) == "" {
		spinnerFrame = "•"
	}
	return styles.StepRunningStyle().Render(spinnerFrame)
}

// RenderThinking draws the visible function steps and thought preview of an
// agent message that has no content yet.
func RenderThinking(msg models.Message, spinnerFrame string) string {
	var lines []string
	for _, step := range msg.FunctionSteps {
		lines = append(lines, stepIcon(step.Status, spinnerFrame)+" "+step.Name)
	}
	for _, thought := range msg.Thoughts {
		lines = append(lines, stepIcon(thought.Status, spinnerFrame)+" "+styles.ThoughtStyle().Render(thought.Message))
	}
	return strings.Join(lines, "\n")
}

// RenderToolSummary collapses the tool history into one line.
func RenderToolSummary(history []models.FunctionStep) string {
	if len(history) == 0 {
		return ""
	}
	parts := make([]string, 0, len(history))
	for _, step := range history {
		mark := "✓"
		switch step.Status {
		case models.ItemFailed:
			mark = "✗"
		case models.ItemRunning:
			mark = "…"
		}
		parts = append(parts, step.Name+" "+mark)
	}
	return styles.HintStyle().Render("tools: " + strings.Join(parts, ", "))
}
