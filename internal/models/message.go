package models

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

type Role string

const (
	User   Role = "user"
	Agent  Role = "agent"
	System Role = "system"
)

type MessageStatus string

const (
	StatusThinking  MessageStatus = "thinking"
	StatusStreaming MessageStatus = "streaming"
	StatusCompleted MessageStatus = "completed"
	StatusError     MessageStatus = "error"
)

// Rank orders statuses; transitions may only move to a higher rank.
func (s MessageStatus) Rank() int {
	switch s {
	case StatusThinking:
		return 0
	case StatusStreaming:
		return 1
	case StatusCompleted, StatusError:
		return 2
	}
	return -1
}

// Terminal reports whether no further transition is allowed.
func (s MessageStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

type ItemStatus string

const (
	ItemRunning   ItemStatus = "running"
	ItemCompleted ItemStatus = "completed"
	ItemFailed    ItemStatus = "failed"
)

// FunctionStep is one backend tool action, identified by Name within a message.
type FunctionStep struct {
	ID     string
	Name   string
	Status ItemStatus
}

// ThoughtLog is a reasoning preview entry.
type ThoughtLog struct {
	ID      string
	Message string
	Status  ItemStatus
}

type Message struct {
	ID      string
	Role    Role
	Content string
	Status  MessageStatus
	// Visible only until Content is non-empty
	FunctionSteps []FunctionStep
	Thoughts      []ThoughtLog
	// Every backend tool step of the turn, kept after content arrives
	ToolHistory []FunctionStep
}

// Clone returns a deep copy.
func (m Message) Clone() Message {
	c := m
	if m.FunctionSteps != nil {
		c.FunctionSteps = append([]FunctionStep(nil), m.FunctionSteps...)
	}
	if m.Thoughts != nil {
		c.Thoughts = append([]ThoughtLog(nil), m.Thoughts...)
	}
	if m.ToolHistory != nil {
		c.ToolHistory = append([]FunctionStep(nil), m.ToolHistory...)
	}
	return c
}

var messageSeq atomic.Uint64

// NewMessageID returns an ID that sorts by creation order within a process.
func NewMessageID(prefix string) string {
	n := messageSeq.Add(1)
	return fmt.Sprintf("%s-%06d-%s", prefix, n, strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func NewUserMessage(content string) Message {
	return Message{ID: NewMessageID("user"), Role: User, Content: content, Status: StatusCompleted}
}

func NewSystemMessage(content string, status MessageStatus) Message {
	if status == "" {
		status = StatusCompleted
	}
	return Message{ID: NewMessageID("system"), Role: System, Content: content, Status: status}
}
