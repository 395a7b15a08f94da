package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/TermTwin/internal/config"
	"github.com/Rorical/TermTwin/internal/dispatcher"
	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/internal/update"
	"github.com/Rorical/TermTwin/ui/components"
)

func newTestModel(t *testing.T) (*AppModel, *eventbus.EventBus) {
	t.Helper()
	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb)
	t.Cleanup(func() {
		disp.Stop()
		eb.Close()
	})
	return &AppModel{
		appModel:   models.NewAppModel(true),
		dispatcher: disp,
		markdown:   components.NewMarkdown("notty"),
	}, eb
}

func TestModelRendersCoreState(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	_, cmd := m.Update(update.CoreEventMsg{Event: eventbus.StateUpdateEvent{
		Messages: []models.Message{
			models.NewSystemMessage("-- TERMTWIN --", ""),
			models.NewUserMessage("hello"),
			{ID: "a", Role: models.Agent, Status: models.StatusCompleted, Content: "Hi there"},
		},
		Error: "backend down",
	}})
	assert.NotNil(t, cmd, "keeps listening for core events")

	view := m.View()
	assert.Contains(t, view, "-- TERMTWIN --")
	assert.Contains(t, view, "Hi there")
	assert.Contains(t, view, "visitor@twin:~$")
	assert.Contains(t, view, "backend down")
	assert.LessOrEqual(t, strings.Count(view, "\n")+1, 30)
}

func TestModelKeysReachCore(t *testing.T) {
	m, eb := newTestModel(t)
	for _, r := range "ls" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, eventbus.SendMessageEvent{Message: "ls"}, <-eb.UIToCore())
}

func TestModelContactFormView(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(update.CoreEventMsg{Event: eventbus.OpenContactFormEvent{}})
	view := m.View()
	assert.Contains(t, view, "secure contact channel")
	assert.NotContains(t, view, "visitor@twin:~$")
}

func TestTailLines(t *testing.T) {
	assert.Equal(t, "c\nd", tailLines("a\nb\nc\nd", 2))
	assert.Equal(t, "a\nb", tailLines("a\nb", 5))
	assert.Equal(t, "", tailLines("a\nb", 0))
}

func TestNewApplicationWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadFrom(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	cfg.IPLookupURL = ""
	cfg.Profiles["alt"] = config.Profile{BaseURL: "http://localhost:1"}

	app, err := NewApplicationWithConfig(context.Background(), cfg, Options{Profile: "alt", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "alt", cfg.ActiveProfile)
	assert.True(t, app.Service().IsReady())
	app.Stop()

	assert.FileExists(t, filepath.Join(dir, "termtwin.log"))

	_, err = NewApplicationWithConfig(context.Background(), cfg, Options{Profile: "missing"})
	assert.Error(t, err)
}
