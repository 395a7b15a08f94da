package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/TermTwin/internal/update"
	"github.com/Rorical/TermTwin/ui/components"
)

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.dispatcher.ListenForUIEvents(),
		textinput.Blink,
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	// Handle other events through the event bus
	eventBus := m.dispatcher.GetEventBus()
	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, eventBus)

	return m, cmd
}

func (m *AppModel) View() string {
	am := &m.appModel
	frame := ""
	if am.Streaming {
		frame = am.Spinner.View()
	}

	var bottom strings.Builder
	if am.Contact.Active {
		bottom.WriteString(components.RenderContactForm(am.Contact, am.Width))
	} else {
		bottom.WriteString(components.RenderInput(am.Input, am.Width))
	}
	bottom.WriteString("\n")
	bottom.WriteString(components.RenderStatus(am.Status, am.Error, am.Streaming, frame, am.Width))

	messages := components.RenderMessages(am.Messages, m.markdown, frame, am.Width)
	if am.Height > 0 {
		messages = tailLines(messages, am.Height-lipgloss.Height(bottom.String()))
	}

	return messages + bottom.String()
}

// tailLines keeps the last n lines so the newest messages stay above the input.
func tailLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
