package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/TermTwin/internal/models"
)

func run(t *testing.T, input string) *models.Message {
	t.Helper()
	return Process(input, Context{
		UserIP:    "203.0.113.9",
		SessionID: "abc123",
		Now:       time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC),
	})
}

func TestProcessUnmatched(t *testing.T) {
	assert.Nil(t, run(t, "gibberish"))
	assert.Nil(t, run(t, "what is your stack?"))
	assert.Nil(t, run(t, ""))
	assert.Nil(t, run(t, "   "))
}

func TestProcessCaseInsensitiveCommand(t *testing.T) {
	for _, pair := range [][2]string{
		{"ls", "LS"},
		{"help", "HeLp"},
		{"uname -a", "UNAME -a"},
		{"cat README.md", "CAT README.md"},
	} {
		lower, upper := run(t, pair[0]), run(t, pair[1])
		require.NotNil(t, lower)
		require.NotNil(t, upper)
		assert.Equal(t, lower.Content, upper.Content)
		assert.Equal(t, lower.Status, upper.Status)
		assert.Equal(t, lower.Role, upper.Role)
	}
}

func TestProcessListing(t *testing.T) {
	msg := run(t, "ls")
	require.NotNil(t, msg)
	assert.Equal(t, models.System, msg.Role)
	assert.Equal(t, models.StatusCompleted, msg.Status)
	assert.Contains(t, msg.Content, "README.md")

	for _, in := range []string{"ll projects/", "ls projects"} {
		msg = run(t, in)
		require.NotNil(t, msg)
		assert.Contains(t, msg.Content, "ai-agent.json")
	}
}

func TestProcessCat(t *testing.T) {
	msg := run(t, "cat README.md")
	require.NotNil(t, msg)
	assert.True(t, strings.HasPrefix(msg.Content, "# Digital Twin"))

	msg = run(t, "cat nope.txt")
	require.NotNil(t, msg)
	assert.Equal(t, models.StatusError, msg.Status)
	assert.Equal(t, "cat: nope.txt: No such file or directory\nType 'ls' to see available files.", msg.Content)

	msg = run(t, "cat")
	require.NotNil(t, msg)
	assert.Equal(t, models.StatusError, msg.Status)

	msg = run(t, "cat projects")
	require.NotNil(t, msg)
	assert.Equal(t, models.StatusError, msg.Status)

	msg = run(t, "cat readme.md")
	require.NotNil(t, msg)
	assert.Equal(t, models.StatusError, msg.Status, "file names stay case-sensitive")
}

func TestProcessTriggers(t *testing.T) {
	cases := map[string]Action{
		"cat contact.sh": ActionContactForm,
		"cat resume.pdf": ActionResumeDownload,
		"clear":          ActionClearScreen,
		"CLEAR":          ActionClearScreen,
		"ls":             ActionNone,
	}
	for in, want := range cases {
		msg := run(t, in)
		require.NotNil(t, msg, in)
		assert.Equal(t, want, ActionFor(*msg), in)
	}

	agent := models.Message{Role: models.Agent, Content: ClearScreenTrigger}
	assert.Equal(t, ActionNone, ActionFor(agent))
	assert.Equal(t, "contact-form", ActionContactForm.String())
}

func TestProcessSystemInfo(t *testing.T) {
	msg := run(t, "whoami")
	require.NotNil(t, msg)
	assert.Contains(t, msg.Content, "visitor@203.0.113.9 (Guest User)")
	assert.Contains(t, msg.Content, "terminal-session-abc123")

	msg = Process("whoami", Context{})
	require.NotNil(t, msg)
	assert.Contains(t, msg.Content, "visitor@"+FallbackIP)

	msg = run(t, "date")
	require.NotNil(t, msg)
	assert.Equal(t, "Tue, 14 Jan 2025 12:00:00 GMT\nUTC timezone", msg.Content)

	assert.Equal(t, "Linux", run(t, "uname").Content)
	assert.Equal(t, "Linux digital-twin 5.15.0-generic #42-Ubuntu SMP PREEMPT x86_64 GNU/Linux", run(t, "uname -a").Content)
}

func TestProcessJokes(t *testing.T) {
	assert.Contains(t, run(t, "sudo rm -rf /").Content, "sudoers")

	msg := run(t, "rm -rf /")
	assert.Equal(t, models.StatusError, msg.Status)
	assert.Contains(t, msg.Content, "PERMISSION DENIED")

	msg = run(t, "rm notes.txt")
	assert.Equal(t, models.StatusCompleted, msg.Status)
	assert.Contains(t, msg.Content, "read-only")

	for _, ed := range []string{"vi", "vim", "nano"} {
		assert.Contains(t, run(t, ed).Content, "Cannot open display")
	}

	assert.Equal(t, models.StatusError, run(t, "cd").Status)
	assert.Equal(t, models.StatusError, run(t, "cd /etc").Status)
	assert.Contains(t, run(t, "cd projects").Content, "projects/")
}

func TestProcessIsPure(t *testing.T) {
	a, b := run(t, "ls"), run(t, "ls")
	assert.Equal(t, a.Content, b.Content)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Contains(t, Names(), "whoami")
}
