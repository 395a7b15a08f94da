package models

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
)

const (
	ContactFieldEmail = iota
	ContactFieldMessage
)

// ContactForm is the inline dialog opened by `cat contact.sh`.
type ContactForm struct {
	Active  bool
	Field   int
	Email   textinput.Model
	Message textinput.Model
	Error   string
	Sending bool
}

func NewContactForm() ContactForm {
	email := textinput.New()
	email.Placeholder = "your@email.com"
	email.CharLimit = 254
	email.Prompt = "Email:   "

	message := textinput.New()
	message.Placeholder = "What would you like to talk about?"
	message.CharLimit = 2000
	message.Prompt = "Message: "

	return ContactForm{Email: email, Message: message}
}

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	Messages         []Message // Snapshot from core
	Input            textinput.Model
	Spinner          spinner.Model
	Status           string // Status bar text
	Error            string // Error slot, separate from message content
	Streaming        bool   // A turn is in flight
	Width            int    // Terminal width
	Height           int    // Terminal height
	ChatServiceReady bool   // Whether a backend is configured
	Contact          ContactForm
	History          []string // Sent inputs, oldest first
	HistoryIndex     int      // len(History) when not browsing
}

func NewAppModel(chatReady bool) AppModel {
	input := textinput.New()
	input.Prompt = "visitor@twin:~$ "
	input.Placeholder = "ask anything, or type help"
	input.CharLimit = 4096
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	status := "Ready"
	if !chatReady {
		status = "Offline: local commands only"
	}

	return AppModel{
		Messages:         make([]Message, 0), // Start empty, core will send messages
		Input:            input,
		Spinner:          sp,
		Status:           status,
		ChatServiceReady: chatReady,
		Contact:          NewContactForm(),
	}
}
