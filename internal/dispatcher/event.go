package dispatcher

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/TermTwin/internal/eventbus"
	"github.com/Rorical/TermTwin/internal/update"
)

// EventDispatcher handles routing events between core and UI
type EventDispatcher struct {
	eventBus *eventbus.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewEventDispatcher(eventBus *eventbus.EventBus) *EventDispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (ed *EventDispatcher) Start() {
	// No longer needed - UI handles events directly
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}

// ListenForUIEvents waits for the next core event and hands it to Bubble Tea.
// The model re-issues it after every CoreEventMsg.
func (ed *EventDispatcher) ListenForUIEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := ed.Next(ed.ctx)
		if !ok {
			return nil
		}
		return update.CoreEventMsg{Event: event}
	}
}

// Next blocks for the next core event. It reports false once the bus is
// closed or ctx is done.
func (ed *EventDispatcher) Next(ctx context.Context) (eventbus.CoreEvent, bool) {
	select {
	case event, ok := <-ed.eventBus.CoreToUI():
		return event, ok
	case <-ctx.Done():
		return nil, false
	case <-ed.ctx.Done():
		return nil, false
	}
}
