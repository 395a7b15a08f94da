package styles

import "github.com/charmbracelet/lipgloss"

const (
	ColorAccent  = lipgloss.Color("62")
	ColorUser    = lipgloss.Color("39")
	ColorAgent   = lipgloss.Color("214")
	ColorMuted   = lipgloss.Color("245")
	ColorFaint   = lipgloss.Color("241")
	ColorSuccess = lipgloss.Color("72")
	ColorError   = lipgloss.Color("203")
	ColorBanner  = lipgloss.Color("141")
)

func InputStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 1).
		Width(max(width-4, 10))
}

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorFaint).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

// ErrorSlotStyle is the error segment at the right of the status bar.
func ErrorSlotStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorError).
		Background(lipgloss.Color("235")).
		Bold(true)
}

func SystemStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorMuted).
		Padding(0, 2)
}

func SystemErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorError).
		Padding(0, 2)
}

func UserStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorUser).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorUser).
		Padding(0, 1).
		MarginLeft(2)
}

func AgentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(ColorAgent).
		Padding(0, 1).
		MarginLeft(2)
}

func AgentErrorStyle() lipgloss.Style {
	return AgentStyle().BorderForeground(ColorError)
}

func BannerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorBanner).
		Bold(true).
		Padding(0, 2)
}

func StepRunningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorAgent)
}

func StepCompletedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorSuccess)
}

func StepFailedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorError)
}

func ThoughtStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true)
}

func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorFaint)
}

func CursorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorAgent).Bold(true)
}

func ContactBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ColorBanner).
		Padding(0, 1).
		Width(max(width-4, 20))
}

func ContactTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorBanner).Bold(true)
}
