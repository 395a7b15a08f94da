package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rorical/TermTwin/internal/models"
	"github.com/Rorical/TermTwin/internal/sse"
	"github.com/Rorical/TermTwin/internal/stream"
	"github.com/Rorical/TermTwin/internal/typewriter"
)

const (
	DefaultInitStepDelay = time.Second

	ThoughtPreviewID = "thought-preview"
	initStepName     = "Initializing"

	connectionTimeoutMessage = "Connection timeout"
	idleTimeoutMessage       = "Stream idle timeout"
)

type StateOptions struct {
	// Scheduler drives the typewriter and the init step timer. Callbacks must
	// arrive on the goroutine that owns the state.
	Scheduler     typewriter.Scheduler
	Pacing        typewriter.Pacing
	InitStepDelay time.Duration
	// OnChange is called after every mutation.
	OnChange func()
}

// ChatState owns the transcript and the in-flight turn.
//
// It is confined to a single goroutine (the service event loop) and is not
// safe for concurrent use.
type ChatState struct {
	opts      StateOptions
	messages  []models.Message
	turn      *Turn
	lastError string
}

func NewChatState(opts StateOptions) *ChatState {
	if opts.Scheduler == nil {
		opts.Scheduler = typewriter.RealScheduler{}
	}
	if opts.InitStepDelay <= 0 {
		opts.InitStepDelay = DefaultInitStepDelay
	}
	if opts.OnChange == nil {
		opts.OnChange = func() {}
	}
	return &ChatState{opts: opts}
}

// Messages returns a deep copy of the transcript.
func (cs *ChatState) Messages() []models.Message {
	result := make([]models.Message, len(cs.messages))
	for i, msg := range cs.messages {
		result[i] = msg.Clone()
	}
	return result
}

func (cs *ChatState) IsStreaming() bool {
	return cs.turn != nil
}

// ActiveTurn returns the in-flight turn, or nil.
func (cs *ChatState) ActiveTurn() *Turn {
	return cs.turn
}

func (cs *ChatState) LastError() string {
	return cs.lastError
}

func (cs *ChatState) ClearError() {
	if cs.lastError != "" {
		cs.lastError = ""
		cs.changed()
	}
}

func (cs *ChatState) SetError(message string) {
	cs.lastError = message
	cs.changed()
}

func (cs *ChatState) AddSystemMessage(content string, status models.MessageStatus) {
	cs.messages = append(cs.messages, models.NewSystemMessage(content, status))
	cs.changed()
}

// AddLocalExchange records input answered without the backend.
func (cs *ChatState) AddLocalExchange(input string, reply models.Message) {
	cs.messages = append(cs.messages, models.NewUserMessage(input), reply)
	cs.changed()
}

// AddUserMessage records input that triggers a side effect instead of a reply.
func (cs *ChatState) AddUserMessage(input string) {
	cs.messages = append(cs.messages, models.NewUserMessage(input))
	cs.changed()
}

// Clear empties the transcript. An active turn is dropped.
func (cs *ChatState) Clear() {
	if cs.turn != nil {
		cs.turn.release()
		cs.turn = nil
	}
	cs.messages = nil
	cs.lastError = ""
	cs.changed()
}

// StartTurn adds the user message and an agent message in thinking status.
// It returns nil while another turn is in flight.
func (cs *ChatState) StartTurn(ctx context.Context, input string) *Turn {
	if cs.turn != nil {
		return nil
	}
	cs.lastError = ""

	agent := models.Message{
		ID:     models.NewMessageID("agent"),
		Role:   models.Agent,
		Status: models.StatusThinking,
		FunctionSteps: []models.FunctionStep{
			{ID: InitStepID, Name: initStepName, Status: models.ItemRunning},
		},
	}
	cs.messages = append(cs.messages, models.NewUserMessage(input), agent)

	turnCtx, cancel := context.WithCancel(ctx)
	t := &Turn{ID: agent.ID, Input: input, ctx: turnCtx, cancel: cancel}
	t.writer = typewriter.New(func(content string) {
		cs.onDisplayed(t.ID, content)
	}, cs.opts.Scheduler, cs.opts.Pacing)
	t.stopInit = cs.opts.Scheduler.AfterFunc(cs.opts.InitStepDelay, func() {
		cs.completeInit(t.ID)
	})
	cs.turn = t

	cs.changed()
	return t
}

// Apply folds one stream event into the turn's agent message. Events for a
// turn that is no longer active are ignored; the result reports whether the
// event was used.
func (cs *ChatState) Apply(turnID string, ev stream.Event) bool {
	t := cs.turn
	if t == nil || t.ID != turnID || t.closing {
		return false
	}
	if _, skip := ev.(stream.Skip); skip {
		return false
	}
	msg := cs.find(t.ID)
	if msg == nil {
		return false
	}

	// Backend activity settles the synthetic step before its timer does.
	if !t.initDone {
		cs.resolveInit(t, msg)
	}

	switch e := ev.(type) {
	case stream.StatusChange:
		switch e.Phase {
		case stream.PhaseThinkingComplete:
			finishRunning(msg, models.ItemCompleted)
		case stream.PhaseThinking, stream.PhaseStart:
			setStatus(msg, models.StatusThinking)
		}
	case stream.ThinkingComplete:
		finishRunning(msg, models.ItemCompleted)
	case stream.Thought:
		cs.applyThought(t, msg, e)
	case stream.FunctionCall:
		applyFunctionCall(msg, e)
	case stream.Token:
		cs.applyContent(t, e.Content)
	case stream.Delta:
		cs.applyContent(t, e.Content)
	case stream.Complete:
		t.closing = true
		t.writer.CompleteWithCallback(func() { cs.finalize(t) })
	case stream.Error:
		message := e.Message
		if message == "" {
			message = stream.DefaultErrorMessage
		}
		cs.fail(t, message)
		return true
	}

	cs.changed()
	return true
}

// EndStream settles the turn after its transport has returned. A stream that
// closed after a terminal event needs nothing; otherwise the turn completes
// with the content received so far, or fails.
func (cs *ChatState) EndStream(turnID string, err error) {
	t := cs.turn
	if t == nil || t.ID != turnID || t.closing || err == nil {
		return
	}

	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, sse.ErrStreamClosed):
		if t.content.Len() > 0 {
			cs.Apply(turnID, stream.Complete{})
			return
		}
		cs.Apply(turnID, stream.Error{Message: stream.DefaultErrorMessage})
	case errors.Is(err, sse.ErrFirstEventTimeout):
		cs.Apply(turnID, stream.Error{Message: connectionTimeoutMessage})
	case errors.Is(err, sse.ErrIdleTimeout):
		cs.Apply(turnID, stream.Error{Message: idleTimeoutMessage})
	default:
		cs.Apply(turnID, stream.Error{Message: stream.DefaultErrorMessage})
	}
}

// Abort ends the active turn with reason in the error slot.
func (cs *ChatState) Abort(reason string) bool {
	t := cs.turn
	if t == nil {
		return false
	}
	if t.closing {
		// the reply is complete, only the reveal is pending
		t.writer.Complete()
		cs.finalize(t)
		return true
	}
	cs.fail(t, reason)
	return true
}

// Shutdown drops the active turn without touching the transcript.
func (cs *ChatState) Shutdown() {
	if cs.turn != nil {
		cs.turn.release()
		cs.turn = nil
	}
}

func (cs *ChatState) applyContent(t *Turn, content string) {
	if content == "" {
		return
	}
	t.content.WriteString(content)
	t.writer.Enqueue(content)
}

func (cs *ChatState) applyThought(t *Turn, msg *models.Message, e stream.Thought) {
	t.thinking.WriteString(e.Message)
	preview := ThinkingPreview(t.thinking.String())

	if normalized := normalizeForComparison(preview); normalized != "" {
		if line := normalizeForComparison(firstContentLine(msg.Content)); line != "" && line == normalized {
			// the thought only restates the answer
			msg.Thoughts = nil
			return
		}
	}

	status := itemStatus(e.Status)
	for i := range msg.Thoughts {
		if msg.Thoughts[i].ID == ThoughtPreviewID {
			msg.Thoughts[i].Message = preview
			msg.Thoughts[i].Status = status
			return
		}
	}
	msg.Thoughts = append(msg.Thoughts, models.ThoughtLog{ID: ThoughtPreviewID, Message: preview, Status: status})
}

func applyFunctionCall(msg *models.Message, e stream.FunctionCall) {
	status := itemStatus(e.Status)
	msg.FunctionSteps = upsertStep(msg.FunctionSteps, "fn", e.Name, status)
	msg.ToolHistory = upsertStep(msg.ToolHistory, "tool", e.Name, status)
}

// upsertStep updates the step called name, or appends it.
func upsertStep(steps []models.FunctionStep, prefix, name string, status models.ItemStatus) []models.FunctionStep {
	for i := range steps {
		if steps[i].Name == name {
			steps[i].Status = status
			return steps
		}
	}
	return append(steps, models.FunctionStep{
		ID:     fmt.Sprintf("%s-%d", prefix, len(steps)),
		Name:   name,
		Status: status,
	})
}

func (cs *ChatState) onDisplayed(turnID, content string) {
	t := cs.turn
	if t == nil || t.ID != turnID {
		return
	}
	msg := cs.find(turnID)
	if msg == nil || msg.Status.Terminal() {
		return
	}
	msg.Content = content
	if content != "" {
		setStatus(msg, models.StatusStreaming)
		msg.FunctionSteps = nil
		msg.Thoughts = nil
	}
	cs.changed()
}

func (cs *ChatState) completeInit(turnID string) {
	t := cs.turn
	if t == nil || t.ID != turnID || t.initDone {
		return
	}
	t.stopInit = nil
	if msg := cs.find(turnID); msg != nil {
		cs.resolveInit(t, msg)
		cs.changed()
	}
}

func (cs *ChatState) resolveInit(t *Turn, msg *models.Message) {
	if t.stopInit != nil {
		t.stopInit()
		t.stopInit = nil
	}
	t.initDone = true
	for i := range msg.FunctionSteps {
		if msg.FunctionSteps[i].ID == InitStepID && msg.FunctionSteps[i].Status == models.ItemRunning {
			msg.FunctionSteps[i].Status = models.ItemCompleted
		}
	}
}

func (cs *ChatState) finalize(t *Turn) {
	if cs.turn != t {
		return
	}
	if msg := cs.find(t.ID); msg != nil {
		msg.Content = t.content.String()
		setStatus(msg, models.StatusCompleted)
		finishRunning(msg, models.ItemCompleted)
	}
	cs.endTurn(t)
}

func (cs *ChatState) fail(t *Turn, message string) {
	t.writer.Cancel()
	if msg := cs.find(t.ID); msg != nil {
		setStatus(msg, models.StatusError)
		finishRunning(msg, models.ItemFailed)
	}
	cs.lastError = message
	cs.endTurn(t)
}

func (cs *ChatState) endTurn(t *Turn) {
	t.release()
	if cs.turn == t {
		cs.turn = nil
	}
	cs.changed()
}

func (cs *ChatState) find(id string) *models.Message {
	for i := len(cs.messages) - 1; i >= 0; i-- {
		if cs.messages[i].ID == id {
			return &cs.messages[i]
		}
	}
	return nil
}

func (cs *ChatState) changed() {
	cs.opts.OnChange()
}

// setStatus moves msg forward only; terminal statuses are final.
func setStatus(msg *models.Message, next models.MessageStatus) bool {
	if msg.Status.Terminal() || next.Rank() < msg.Status.Rank() {
		return false
	}
	msg.Status = next
	return true
}

func finishRunning(msg *models.Message, to models.ItemStatus) {
	for i := range msg.FunctionSteps {
		if msg.FunctionSteps[i].Status == models.ItemRunning {
			msg.FunctionSteps[i].Status = to
		}
	}
	for i := range msg.Thoughts {
		if msg.Thoughts[i].Status == models.ItemRunning {
			msg.Thoughts[i].Status = to
		}
	}
	for i := range msg.ToolHistory {
		if msg.ToolHistory[i].Status == models.ItemRunning {
			msg.ToolHistory[i].Status = to
		}
	}
}

func itemStatus(s stream.StepStatus) models.ItemStatus {
	switch s {
	case stream.StepCompleted:
		return models.ItemCompleted
	case stream.StepFailed:
		return models.ItemFailed
	}
	return models.ItemRunning
}
