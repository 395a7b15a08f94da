package stream

// Kind identifies a semantic stream event.
type Kind string

const (
	KindToken            Kind = "token"
	KindDelta            Kind = "delta"
	KindFunctionCall     Kind = "function_call"
	KindThought          Kind = "thought"
	KindStatus           Kind = "status"
	KindThinkingComplete Kind = "thinking_complete"
	KindComplete         Kind = "complete"
	KindError            Kind = "error"
	KindSkip             Kind = "skip"
)

// Phase is the payload of a status event.
type Phase string

const (
	PhaseStart            Phase = "start"
	PhaseThinking         Phase = "thinking"
	PhaseThinkingComplete Phase = "thinking_complete"
)

// StepStatus is the lifecycle of a tool call or thought as reported by the backend.
type StepStatus string

const (
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// DefaultErrorMessage is used when the backend or transport fails without a message.
const DefaultErrorMessage = "Stream error"

// Event is the closed set of events produced by the parser.
// Implementations live in this package only.
type Event interface {
	Kind() Kind
	event()
}

// Token is visible response text from the generic stream format.
type Token struct {
	Content string
}

// Delta is visible response text from the named-event protocol.
type Delta struct {
	Content string
}

// FunctionCall reports a backend tool step.
type FunctionCall struct {
	Name   string
	Status StepStatus
}

// Thought carries intermediate reasoning text.
type Thought struct {
	Message string
	Status  StepStatus
}

// StatusChange reports a phase transition.
type StatusChange struct {
	Phase Phase
}

// ThinkingComplete marks the end of the thinking phase.
type ThinkingComplete struct{}

// Complete marks the end of the turn.
type Complete struct{}

// Error ends the turn with a message for the error slot.
type Error struct {
	Message string
}

// Skip is a payload that must not reach the transcript.
type Skip struct {
	Reason string
}

func (Token) Kind() Kind            { return KindToken }
func (Delta) Kind() Kind            { return KindDelta }
func (FunctionCall) Kind() Kind     { return KindFunctionCall }
func (Thought) Kind() Kind          { return KindThought }
func (StatusChange) Kind() Kind     { return KindStatus }
func (ThinkingComplete) Kind() Kind { return KindThinkingComplete }
func (Complete) Kind() Kind         { return KindComplete }
func (Error) Kind() Kind            { return KindError }
func (Skip) Kind() Kind             { return KindSkip }

func (Token) event()            {}
func (Delta) event()            {}
func (FunctionCall) event()     {}
func (Thought) event()          {}
func (StatusChange) event()     {}
func (ThinkingComplete) event() {}
func (Complete) event()         {}
func (Error) event()            {}
func (Skip) event()             {}

// IsTerminal reports whether ev ends a turn.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case Complete, Error:
		return true
	}
	return false
}

// ContentOf returns the visible text carried by a token or delta.
func ContentOf(ev Event) (string, bool) {
	switch e := ev.(type) {
	case Token:
		return e.Content, true
	case Delta:
		return e.Content, true
	}
	return "", false
}

func normalizeStepStatus(s string, def StepStatus) StepStatus {
	switch StepStatus(s) {
	case StepRunning, StepCompleted, StepFailed:
		return StepStatus(s)
	}
	return def
}
