package stream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// wirePayload is the union of every field the backend puts in a frame.
type wirePayload struct {
	Type     string
	Name     *string
	ToolName *string
	Status   string
	Success  *bool
	Message  *string
	Content  *string
	Phase    string
}

// Parser turns decoded SSE payloads into events.
type Parser struct {
	noise *NoiseFilter
}

// NewParser returns a parser using noise to drop backend diagnostics.
// A nil filter falls back to DefaultNoisePatterns.
func NewParser(noise *NoiseFilter) *Parser {
	if noise == nil {
		noise = DefaultNoiseFilter()
	}
	return &Parser{noise: noise}
}

// Parse interprets a payload from the generic data-only stream.
func (p *Parser) Parse(payload string) Event {
	w, ok := decodeObject(payload)
	if !ok {
		return p.rawText(payload)
	}
	return p.fromWire(w.Type, w)
}

// ParseNamed interprets the data of a named SSE event. Unnamed events
// ("" or "message") are handled like the generic stream.
func (p *Parser) ParseNamed(event, data string) Event {
	event = strings.TrimSpace(event)
	if event == "" || event == "message" {
		return p.Parse(data)
	}

	w, ok := decodeObject(data)
	if !ok {
		w = wirePayload{}
		if text := data; strings.TrimSpace(text) != "" {
			w.Content = &text
			if event == string(KindThought) || event == "thinking_delta" {
				w.Message = &text
			}
		}
	}
	return p.fromWire(event, w)
}

// decodeObject reads a JSON object field by field. A field of an unexpected
// type is treated as missing; only payloads that are not JSON objects at all
// fall back to raw text.
func decodeObject(payload string) (wirePayload, bool) {
	var w wirePayload
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return w, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return w, false
	}

	w.Type = stringValue(fields["type"])
	w.Name = optionalString(fields["name"])
	w.ToolName = optionalString(fields["tool_name"])
	w.Status = stringValue(fields["status"])
	w.Message = optionalString(fields["message"])
	w.Content = optionalString(fields["content"])
	w.Phase = stringValue(fields["phase"])
	if raw, ok := fields["success"]; ok {
		var success bool
		if json.Unmarshal(raw, &success) == nil {
			w.Success = &success
		}
	}
	return w, true
}

func optionalString(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func stringValue(raw json.RawMessage) string {
	if s := optionalString(raw); s != nil {
		return *s
	}
	return ""
}

func (p *Parser) fromWire(kind string, w wirePayload) Event {
	switch kind {
	case string(KindFunctionCall):
		name := firstNonEmpty(w.Name, w.ToolName)
		if name == "" {
			return Skip{Reason: "function_call without name"}
		}
		return FunctionCall{Name: name, Status: normalizeStepStatus(w.Status, StepRunning)}

	case string(KindThought):
		if w.Message == nil {
			return Skip{Reason: "thought without message"}
		}
		return Thought{Message: *w.Message, Status: normalizeStepStatus(w.Status, StepCompleted)}

	case string(KindToken), string(KindDelta), "response_delta":
		if w.Content == nil {
			return Skip{Reason: kind + " without content"}
		}
		if p.noise.IsNoise(*w.Content) {
			return Skip{Reason: "debug noise"}
		}
		if kind == string(KindToken) {
			return Token{Content: *w.Content}
		}
		return Delta{Content: *w.Content}

	case string(KindStatus):
		switch Phase(w.Phase) {
		case PhaseStart, PhaseThinking, PhaseThinkingComplete:
			return StatusChange{Phase: Phase(w.Phase)}
		}
		return Skip{Reason: fmt.Sprintf("unknown status phase %q", w.Phase)}

	case string(KindError):
		msg := DefaultErrorMessage
		if w.Message != nil && strings.TrimSpace(*w.Message) != "" {
			msg = *w.Message
		}
		return Error{Message: msg}

	case string(KindComplete):
		return Complete{}

	case string(KindThinkingComplete), "thinking_end":
		return ThinkingComplete{}

	case "thinking_start":
		return StatusChange{Phase: PhaseThinking}

	case "thinking_delta":
		text := firstNonEmpty(w.Content, w.Message)
		if text == "" {
			return Skip{Reason: "empty thinking delta"}
		}
		return Thought{Message: text, Status: StepRunning}

	case "tool_call_start":
		name := firstNonEmpty(w.ToolName, w.Name)
		if name == "" {
			return Skip{Reason: "tool_call_start without name"}
		}
		return FunctionCall{Name: name, Status: StepRunning}

	case "tool_call_end":
		name := firstNonEmpty(w.ToolName, w.Name)
		if name == "" {
			return Skip{Reason: "tool_call_end without name"}
		}
		status := StepCompleted
		if w.Success != nil && !*w.Success {
			status = StepFailed
		}
		return FunctionCall{Name: name, Status: normalizeStepStatus(w.Status, status)}

	case "session_start", "response_start", "response_end":
		return Skip{Reason: kind}
	}

	if w.Content != nil {
		if p.noise.IsNoise(*w.Content) {
			return Skip{Reason: "debug noise"}
		}
		return Token{Content: *w.Content}
	}
	return Skip{Reason: fmt.Sprintf("unknown event type %q", kind)}
}

func (p *Parser) rawText(payload string) Event {
	if strings.TrimSpace(payload) == "" {
		return Skip{Reason: "empty payload"}
	}
	if p.noise.IsNoise(payload) {
		return Skip{Reason: "debug noise"}
	}
	return Token{Content: payload}
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
