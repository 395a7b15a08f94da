package update

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/internal/portfolio"
)

const waitingStatus = "Waiting for the current reply (Esc to cancel)"

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	if keyMsg.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	if appModel.Contact.Active {
		return handleContactKey(appModel, keyMsg, eb)
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		if appModel.Streaming {
			if err := eb.SendToCore(eventbus.CancelTurnEvent{}); err != nil {
				appModel.Status = "Error sending message: " + err.Error()
			}
		}
		return nil
	case tea.KeyEnter:
		return submitInput(appModel, eb)
	case tea.KeyUp:
		browseHistory(appModel, -1)
		return nil
	case tea.KeyDown:
		browseHistory(appModel, +1)
		return nil
	}

	var cmd tea.Cmd
	appModel.Input, cmd = appModel.Input.Update(keyMsg)
	return cmd
}

func submitInput(appModel *models.AppModel, eb *eventbus.EventBus) tea.Cmd {
	text := strings.TrimSpace(appModel.Input.Value())
	if text == "" {
		return nil
	}
	// One turn at a time; keep the draft until the reply ends
	if appModel.Streaming {
		appModel.Status = waitingStatus
		return nil
	}

	// Send event to core via event bus with error handling
	if err := eb.SendToCore(eventbus.SendMessageEvent{Message: text}); err != nil {
		appModel.Status = "Error sending message: " + err.Error()
		return nil
	}

	// Only manage local UI state - clear input
	appModel.History = append(appModel.History, text)
	appModel.HistoryIndex = len(appModel.History)
	appModel.Input.Reset()
	return nil
}

// browseHistory moves through sent inputs; past the newest entry the input
// is cleared.
func browseHistory(appModel *models.AppModel, delta int) {
	if len(appModel.History) == 0 {
		return
	}
	next := appModel.HistoryIndex + delta
	if next < 0 {
		next = 0
	}
	if next >= len(appModel.History) {
		appModel.HistoryIndex = len(appModel.History)
		appModel.Input.Reset()
		return
	}
	appModel.HistoryIndex = next
	appModel.Input.SetValue(appModel.History[next])
	appModel.Input.CursorEnd()
}

func handleContactKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	form := &appModel.Contact
	switch keyMsg.Type {
	case tea.KeyEsc:
		closeContactForm(appModel)
		appModel.Status = "Contact cancelled"
		return nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		focusContactField(form, 1-form.Field)
		return nil
	case tea.KeyEnter:
		if form.Field == models.ContactFieldEmail {
			focusContactField(form, models.ContactFieldMessage)
			return nil
		}
		if form.Sending {
			return nil
		}
		email, message := form.Email.Value(), form.Message.Value()
		if err := portfolio.ValidateContact(email, message); err != nil {
			form.Error = err.Error()
			return nil
		}
		if err := eb.SendToCore(eventbus.ContactSubmitEvent{Email: email, Message: message}); err != nil {
			form.Error = err.Error()
			return nil
		}
		form.Error = ""
		form.Sending = true
		appModel.Status = "Sending message"
		return nil
	}

	var cmd tea.Cmd
	if form.Field == models.ContactFieldEmail {
		form.Email, cmd = form.Email.Update(keyMsg)
	} else {
		form.Message, cmd = form.Message.Update(keyMsg)
	}
	return cmd
}

func openContactForm(appModel *models.AppModel) {
	appModel.Contact = models.NewContactForm()
	appModel.Contact.Active = true
	focusContactField(&appModel.Contact, models.ContactFieldEmail)
	appModel.Input.Blur()
}

func closeContactForm(appModel *models.AppModel) {
	appModel.Contact.Active = false
	appModel.Contact.Email.Blur()
	appModel.Contact.Message.Blur()
	appModel.Input.Focus()
}

func focusContactField(form *models.ContactForm, field int) {
	form.Field = field
	if field == models.ContactFieldEmail {
		form.Email.Focus()
		form.Message.Blur()
		return
	}
	form.Message.Focus()
	form.Email.Blur()
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		// Update UI state from core state
		wasStreaming := appModel.Streaming
		appModel.Messages = event.Messages
		appModel.Streaming = event.IsStreaming
		appModel.Error = event.Error

		switch {
		case event.IsStreaming:
			appModel.Status = streamingStatus(event.Messages)
		case !appModel.ChatServiceReady:
			appModel.Status = "Offline: local commands only"
		default:
			appModel.Status = "Ready"
		}
		if event.IsStreaming && !wasStreaming {
			return appModel.Spinner.Tick
		}
	case eventbus.OpenContactFormEvent:
		openContactForm(appModel)
		appModel.Status = "Contact: Enter to continue, Esc to cancel"
	case eventbus.ContactResultEvent:
		appModel.Contact.Sending = false
		if event.Err != nil {
			appModel.Contact.Error = event.Err.Error()
			return nil
		}
		closeContactForm(appModel)
		appModel.Status = "Message sent"
	}

	return nil
}

func streamingStatus(messages []models.Message) string {
	if len(messages) > 0 && messages[len(messages)-1].Status == models.StatusStreaming {
		return "Streaming"
	}
	return "Thinking"
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
	appModel.Input.Width = max(sizeMsg.Width-len(appModel.Input.Prompt)-6, 10)
}

// HandleSpinnerMsg animates running steps while a turn is in flight.
func HandleSpinnerMsg(appModel *models.AppModel, tick spinner.TickMsg) tea.Cmd {
	if !appModel.Streaming {
		return nil
	}
	var cmd tea.Cmd
	appModel.Spinner, cmd = appModel.Spinner.Update(tick)
	return cmd
}
