package sse

import (
	"bufio"
	"io"
	"strings"
)

// MaxLineSize bounds a single SSE line.
const MaxLineSize = 1024 * 1024

// Frame is one dispatched named event.
type Frame struct {
	Event string
	Data  string
	ID    string
}

// Reader reads named events from an event stream.
type Reader struct {
	scanner *bufio.Scanner
	lastID  string
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next frame. It returns io.EOF once the stream ends and no
// frame is pending.
func (r *Reader) Next() (Frame, error) {
	var (
		event   string
		data    []string
		pending bool
	)

	for r.scanner.Scan() {
		line := strings.TrimSuffix(r.scanner.Text(), "\r")

		if line == "" {
			if pending {
				return Frame{Event: event, Data: strings.Join(data, "\n"), ID: r.lastID}, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			// keepalive comment
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			event = value
			pending = true
		case "data":
			data = append(data, value)
			pending = true
		case "id":
			r.lastID = value
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Frame{}, err
	}
	if pending {
		return Frame{Event: event, Data: strings.Join(data, "\n"), ID: r.lastID}, nil
	}
	return Frame{}, io.EOF
}

func splitField(line string) (string, string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
