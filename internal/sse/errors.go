package sse

import (
	"errors"
	"fmt"
)

var (
	// ErrFirstEventTimeout is returned when nothing arrives within the connect timeout.
	ErrFirstEventTimeout = errors.New("connection timeout")
	// ErrIdleTimeout is returned when the stream goes quiet for longer than the idle timeout.
	ErrIdleTimeout = errors.New("stream idle timeout")
	// ErrStreamClosed is returned when the body ends before a complete or error event.
	ErrStreamClosed = errors.New("stream closed before completion")
	// ErrNotEventStream is returned when the response is not text/event-stream.
	ErrNotEventStream = errors.New("response is not an event stream")
)

// StatusError is a non-2xx response from the chat backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("chat stream returned status %d", e.Code)
	}
	return fmt.Sprintf("chat stream returned status %d: %s", e.Code, e.Body)
}

// IsTimeout reports whether err is one of the stream watchdog errors.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrFirstEventTimeout) || errors.Is(err, ErrIdleTimeout)
}
