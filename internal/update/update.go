package update

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/models"
)

func HandleUpdateWithEventBus(appModel *models.AppModel, msg tea.Msg, eb *eventbus.EventBus) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsgWithEventBus(appModel, msg, eb)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return nil
	case spinner.TickMsg:
		return HandleSpinnerMsg(appModel, msg)
	case CoreEventMsg:
		return HandleCoreEvent(appModel, msg)
	}

	// Cursor blink and other textinput housekeeping
	var cmd tea.Cmd
	if appModel.Contact.Active {
		if appModel.Contact.Field == models.ContactFieldEmail {
			appModel.Contact.Email, cmd = appModel.Contact.Email.Update(msg)
		} else {
			appModel.Contact.Message, cmd = appModel.Contact.Message.Update(msg)
		}
		return cmd
	}
	appModel.Input, cmd = appModel.Input.Update(msg)
	return cmd
}
