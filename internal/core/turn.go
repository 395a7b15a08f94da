package core

import (
	"context"
	"strings"

	"github.com/Rorical/TermTwin/internal/typewriter"
)

// InitStepID identifies the synthetic step shown before the backend reports
// its own activity.
const InitStepID = "fn-init"

// Turn is the scratch state of one in-flight agent reply. Every stream event
// and timer callback names the turn it belongs to, so callbacks from a turn
// that has ended are ignored.
type Turn struct {
	ID    string // ID of the agent message being built
	Input string

	ctx    context.Context
	cancel context.CancelFunc

	content  strings.Builder // every content chunk received
	thinking strings.Builder // every thought chunk received
	writer   *typewriter.Queue

	stopInit func() bool
	initDone bool
	closing  bool // complete received, waiting for the typewriter to flush
}

// Context is cancelled when the turn ends for any reason.
func (t *Turn) Context() context.Context {
	return t.ctx
}

// RawContent returns all content received so far, shown or not.
func (t *Turn) RawContent() string {
	return t.content.String()
}

func (t *Turn) release() {
	if t.stopInit != nil {
		t.stopInit()
		t.stopInit = nil
	}
	t.initDone = true
	if t.writer != nil {
		t.writer.Cancel()
	}
	if t.cancel != nil {
		t.cancel()
	}
}
