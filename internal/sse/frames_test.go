package sse

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/TermTwin/internal/stream"
)

func TestSplitPayloads(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		payloads []string
		rest     string
	}{
		{"empty", "", nil, ""},
		{
			"separated frames",
			"data: {\"type\":\"token\",\"content\":\"a\"}\n\ndata: {\"type\":\"complete\"}\n\n",
			[]string{`{"type":"token","content":"a"}`, `{"type":"complete"}`},
			"",
		},
		{
			"adjacent frames",
			`data:{"type":"token","content":"a"}data:{"type":"token","content":"b"}data:{"type":"complete"}`,
			[]string{`{"type":"token","content":"a"}`, `{"type":"token","content":"b"}`, `{"type":"complete"}`},
			"",
		},
		{
			"crlf",
			"data: hello\r\n\r\ndata: world\r\n\r\n",
			[]string{"hello", "world"},
			"",
		},
		{
			"incomplete tail",
			`data:{"type":"token","content":"Hi"`,
			nil,
			`data:{"type":"token","content":"Hi"`,
		},
		{
			"complete then partial",
			"data: {\"type\":\"token\",\"content\":\"a\"}\n\ndata: {\"type\":",
			[]string{`{"type":"token","content":"a"}`},
			`data: {"type":`,
		},
		{
			"empty payload dropped",
			"data: \n\ndata:   \n\ndata: x\n\n",
			[]string{"x"},
			"",
		},
		{
			"plain text tail is held",
			"data: partial words",
			nil,
			"data: partial words",
		},
		{
			"comment blocks are discarded",
			": keepalive\n\n: again\n\nda",
			nil,
			"da",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payloads, rest := SplitPayloads(tc.in)
			assert.Equal(t, tc.payloads, payloads)
			assert.Equal(t, tc.rest, rest)
		})
	}
}

func TestSplitPayloadsResumesPartialFrame(t *testing.T) {
	first := `data:{"type":"token","content":"Hi"`
	payloads, rest := SplitPayloads(first)
	require.Empty(t, payloads)
	require.Equal(t, first, rest)

	payloads, rest = SplitPayloads(rest + "}\n\n")
	require.Equal(t, []string{`{"type":"token","content":"Hi"}`}, payloads)
	require.Empty(t, rest)
}

func TestFrameRoundTripProperty(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 100
	properties := gopter.NewProperties(params)
	parser := stream.NewParser(nil)

	properties.Property("split then parse recovers the events in order", prop.ForAll(
		func(words []string, separated bool, chunk int) bool {
			want, wire := buildStream(words, separated)

			var (
				got  []stream.Event
				buf  string
				data = wire
			)
			for len(data) > 0 {
				n := chunk
				if n > len(data) {
					n = len(data)
				}
				var payloads []string
				payloads, buf = SplitPayloads(buf + data[:n])
				data = data[n:]
				for _, p := range payloads {
					got = append(got, parser.Parse(p))
				}
			}
			if strings.TrimSpace(buf) != "" {
				return false
			}
			if len(got) != len(want) {
				return false
			}
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
		gen.Bool(),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t)
}

func buildStream(words []string, separated bool) ([]stream.Event, string) {
	var (
		events []stream.Event
		b      strings.Builder
	)
	write := func(v map[string]any) {
		raw, _ := json.Marshal(v)
		b.WriteString("data: ")
		b.Write(raw)
		if separated {
			b.WriteString("\n\n")
		}
	}

	for i, w := range words {
		switch i % 4 {
		case 0:
			events = append(events, stream.Token{Content: w})
			write(map[string]any{"type": "token", "content": w})
		case 1:
			events = append(events, stream.FunctionCall{Name: "tool" + w, Status: stream.StepCompleted})
			write(map[string]any{"type": "function_call", "name": "tool" + w, "status": "completed"})
		case 2:
			events = append(events, stream.Thought{Message: w, Status: stream.StepCompleted})
			write(map[string]any{"type": "thought", "message": w})
		case 3:
			events = append(events, stream.Delta{Content: w})
			write(map[string]any{"type": "delta", "content": w})
		}
	}
	events = append(events, stream.Complete{})
	write(map[string]any{"type": "complete"})

	return events, b.String()
}
