package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/update"
)

func TestListenForUIEvents(t *testing.T) {
	eb := eventbus.NewEventBus()
	ed := NewEventDispatcher(eb)
	defer ed.Stop()

	require.NoError(t, eb.SendToUI(eventbus.OpenContactFormEvent{}))
	msg := ed.ListenForUIEvents()()
	assert.Equal(t, update.CoreEventMsg{Event: eventbus.OpenContactFormEvent{}}, msg)

	eb.Close()
	assert.Nil(t, ed.ListenForUIEvents()())
}

func TestNextStopsWithContext(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	ed := NewEventDispatcher(eb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := ed.Next(ctx)
	assert.False(t, ok)

	ed.Stop()
	_, ok = ed.Next(context.Background())
	assert.False(t, ok)
}
