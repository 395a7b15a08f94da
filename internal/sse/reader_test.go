package sse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderNext(t *testing.T) {
	input := strings.Join([]string{
		": connected",
		"event: status",
		`data: {"phase":"thinking"}`,
		"",
		"id: 7",
		"event: delta",
		"data: line one",
		"data: line two",
		"",
		"",
		"event:complete",
		"data:{}",
		"",
	}, "\r\n")

	r := NewReader(strings.NewReader(input))

	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, Frame{Event: "status", Data: `{"phase":"thinking"}`}, f)

	f, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, Frame{Event: "delta", Data: "line one\nline two", ID: "7"}, f)

	f, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "complete", f.Event)
	assert.Equal(t, "{}", f.Data)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderDispatchesPendingFrameAtEOF(t *testing.T) {
	r := NewReader(strings.NewReader("event: complete\ndata: {}"))

	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "complete", f.Event)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderDataWithoutEvent(t *testing.T) {
	r := NewReader(strings.NewReader("data: hello\n\n"))

	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, Frame{Data: "hello"}, f)
}
