// Package commands answers shell-style inputs locally, before any network
// call. Process is pure: side effects are signalled by marker content that
// ActionFor classifies.
package commands

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Rorical/TermTwin/internal/models"
)

const (
	ContactFormTrigger    = "CONTACT_MODAL_TRIGGER"
	ResumeDownloadTrigger = "RESUME_DOWNLOAD_TRIGGER"
	ClearScreenTrigger    = "CLEAR_SCREEN_TRIGGER"

	// FallbackIP is shown by whoami when the visitor IP is unknown.
	FallbackIP = "127.0.0.1"
)

type Action int

const (
	ActionNone Action = iota
	ActionContactForm
	ActionResumeDownload
	ActionClearScreen
)

func (a Action) String() string {
	switch a {
	case ActionContactForm:
		return "contact-form"
	case ActionResumeDownload:
		return "resume-download"
	case ActionClearScreen:
		return "clear-screen"
	}
	return "none"
}

// Context carries the few facts commands may print.
type Context struct {
	UserIP    string
	SessionID string
	Now       time.Time
}

type handler func(args []string, ctx Context) models.Message

var table map[string]handler

func init() {
	table = map[string]handler{
		"help":   help,
		"ls":     list,
		"ll":     list,
		"cat":    cat,
		"cd":     cd,
		"whoami": whoami,
		"date":   date,
		"uname":  uname,
		"sudo":   sudo,
		"rm":     rm,
		"vi":     editor,
		"vim":    editor,
		"nano":   editor,
		"clear":  clearScreen,
	}
}

// Process returns the local answer for input, or nil when input should go
// to the agent. Only the command token is case-insensitive.
func Process(input string, ctx Context) *models.Message {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	h, ok := table[strings.ToLower(fields[0])]
	if !ok {
		return nil
	}
	msg := h(fields[1:], ctx)
	return &msg
}

// Names lists the recognised commands in sorted order.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ActionFor maps a marker message to the side effect it requests.
func ActionFor(msg models.Message) Action {
	if msg.Role != models.System {
		return ActionNone
	}
	switch msg.Content {
	case ContactFormTrigger:
		return ActionContactForm
	case ResumeDownloadTrigger:
		return ActionResumeDownload
	case ClearScreenTrigger:
		return ActionClearScreen
	}
	return ActionNone
}

func reply(content string) models.Message {
	return models.NewSystemMessage(content, models.StatusCompleted)
}

func replyError(content string) models.Message {
	return models.NewSystemMessage(content, models.StatusError)
}

func help(_ []string, _ Context) models.Message {
	return reply(helpText)
}

func list(args []string, _ Context) models.Message {
	if len(args) > 0 && strings.TrimSuffix(args[0], "/") == "projects" {
		return reply(projectsListing)
	}
	return reply(listing)
}

func cat(args []string, _ Context) models.Message {
	if len(args) == 0 {
		return replyError("Usage: cat <filename>\n\nExamples: cat README.md, cat resume.pdf")
	}
	name := args[0]
	f, found := files[name]
	if !found {
		return replyError(fmt.Sprintf("cat: %s: No such file or directory\nType 'ls' to see available files.", name))
	}
	if f.kind == kindFolder {
		return replyError(fmt.Sprintf("cat: %s: Is a directory", name))
	}
	return reply(f.content)
}

func cd(args []string, _ Context) models.Message {
	if len(args) == 0 {
		return replyError("cd: missing argument\nUsage: cd <directory>")
	}
	switch args[0] {
	case "projects", "projects/":
		return reply("Changed to projects/ directory\nUse \"ls projects/\" to see contents.")
	case "..", "~", "/":
		return reply("Changed to parent directory (~/)")
	}
	return replyError(fmt.Sprintf("cd: %s: No such file or directory", args[0]))
}

func whoami(_ []string, ctx Context) models.Message {
	ip := ctx.UserIP
	if ip == "" {
		ip = FallbackIP
	}
	session := ctx.SessionID
	if session == "" {
		session = "local"
	}
	return reply(fmt.Sprintf("visitor@%s (Guest User)\nSession: terminal-session-%s\nShell: zsh\nTerminal: cli-terminal-v1.0", ip, session))
}

func date(_ []string, ctx Context) models.Message {
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	return reply(now.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT") + "\nUTC timezone")
}

func uname(args []string, _ Context) models.Message {
	if len(args) > 0 && args[0] == "-a" {
		return reply("Linux digital-twin 5.15.0-generic #42-Ubuntu SMP PREEMPT x86_64 GNU/Linux")
	}
	return reply("Linux")
}

func sudo(_ []string, _ Context) models.Message {
	return reply("!! SECURITY ALERT !!\n\nvisitor is not in the sudoers file. This incident has been reported.\n\n[The owner has been notified of this attempt]")
}

func rm(args []string, _ Context) models.Message {
	if slices.Contains(args, "-rf") && (slices.Contains(args, "/") || slices.Contains(args, "*")) {
		return replyError("CRITICAL ERROR\n\nPERMISSION DENIED\nSystem Integrity Protection is enabled.\n\nNice try though!")
	}
	return reply("rm: cannot remove files in read-only filesystem.\nMode: read-only")
}

func editor(_ []string, _ Context) models.Message {
	return reply("Error: Cannot open display\n\n(Trust me, you don't want to get stuck in Vim here.)\nTry \"cat <file>\" to view file contents instead.")
}

func clearScreen(_ []string, _ Context) models.Message {
	return reply(ClearScreenTrigger)
}
