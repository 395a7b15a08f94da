package components

import (
	"strings"

	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/ui/styles"
)

// RenderContactForm draws the inline contact dialog.
func RenderContactForm(form models.ContactForm, width int) string {
	lines := []string{
		styles.ContactTitleStyle().Render(">> secure contact channel"),
		form.Email.View(),
		form.Message.View(),
	}
	if form.Error != "" {
		lines = append(lines, styles.SystemErrorStyle().UnsetPadding().Render(form.Error))
	}
	hint := "Tab switch field · Enter send · Esc cancel"
	if form.Sending {
		hint = "Sending..."
	}
	lines = append(lines, styles.HintStyle().Render(hint))
	return styles.ContactBoxStyle(width).Render(strings.Join(lines, "\n"))
}
