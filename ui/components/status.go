package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Rorical/TermTwin/ui/styles"
)

// RenderStatus draws the status bar. A non-empty errMsg takes the right-hand
// slot, truncated so the status text stays visible.
func RenderStatus(status, errMsg string, streaming bool, spinnerFrame string, width int) string {
	left := status
	if streaming && spinnerFrame != "" {
		left = spinnerFrame + " " + status
	}
	if errMsg == "" || width <= 0 {
		return styles.StatusStyle(width).Render(left)
	}

	// padding on both sides plus one space between the slots
	room := width - 2 - lipgloss.Width(left) - 1
	if room < 4 {
		return styles.StatusStyle(width).Render(left)
	}
	right := runewidth.Truncate("! "+errMsg, room, "…")
	gap := room - runewidth.StringWidth(right)
	return styles.StatusStyle(width).Render(left + " " + strings.Repeat(" ", max(gap, 0)) + styles.ErrorSlotStyle().Render(right))
}

