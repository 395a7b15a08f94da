package eventbus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndReceive(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	require.NoError(t, eb.SendToCore(SendMessageEvent{Message: "hello"}))
	require.NoError(t, eb.SendToUI(StateUpdateEvent{IsStreaming: true}))

	assert.Equal(t, SendMessageEvent{Message: "hello"}, <-eb.UIToCore())
	ev := (<-eb.CoreToUI()).(StateUpdateEvent)
	assert.True(t, ev.IsStreaming)
}

func TestFullChannelTripsBreaker(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	var reported []EventBusError
	eb.SetErrorCallback(func(err EventBusError) { reported = append(reported, err) })

	for i := 0; i < cap(eb.coreToUI); i++ {
		require.NoError(t, eb.SendToUI(OpenContactFormEvent{}))
	}
	for i := 0; i < 5; i++ {
		assert.Error(t, eb.SendToUI(OpenContactFormEvent{}))
	}
	assert.Equal(t, CircuitOpen, eb.GetCircuitBreakerState())

	err := eb.SendToCore(CancelTurnEvent{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	require.Len(t, reported, 6)
	assert.Equal(t, "SendToUI", reported[0].Operation)
	assert.True(t, errors.Is(reported[5], ErrCircuitOpen))
}

func TestCircuitBreakerRecovers(t *testing.T) {
	now := time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Second)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	now = now.Add(2 * time.Second)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen(), "a failure while half-open reopens")

	now = now.Add(2 * time.Second)
	assert.False(t, cb.IsOpen())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestCloseIsIdempotent(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	eb.Close()

	assert.ErrorIs(t, eb.SendToCore(SendMessageEvent{}), ErrBusClosed)
	assert.ErrorIs(t, eb.SendToUI(StateUpdateEvent{}), ErrBusClosed)

	_, ok := <-eb.UIToCore()
	assert.False(t, ok)
}
