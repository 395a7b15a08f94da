package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/TermTwin/internal/app"
	"github.com/Rorical/TermTwin/internal/config"
)

func newAskApp(t *testing.T, handler http.HandlerFunc, setup ...func(cfg *config.Config, baseURL string)) *app.Application {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	cfg.Profiles[config.DefaultProfileName] = config.Profile{BaseURL: server.URL}
	cfg.Typing.Speed = 0
	cfg.IPLookupURL = ""
	for _, fn := range setup {
		fn(cfg, server.URL)
	}

	application, err := app.NewApplicationWithConfig(context.Background(), cfg, app.Options{Profile: config.DefaultProfileName})
	require.NoError(t, err)
	t.Cleanup(application.Stop)
	application.Service().Start()
	return application
}

func sseReply(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, f := range frames {
		fmt.Fprint(w, f)
	}
}

func TestAskPrintsReply(t *testing.T) {
	application := newAskApp(t, func(w http.ResponseWriter, r *http.Request) {
		sseReply(w,
			"event: delta\ndata: {\"content\":\"Hi\"}\n\n",
			"event: delta\ndata: {\"content\":\" there\"}\n\n",
			"event: complete\ndata: {}\n\n")
	})

	var out bytes.Buffer
	err := ask(context.Background(), application.Dispatcher(), application.EventBus(), "hello", &out)
	require.NoError(t, err)
	assert.Equal(t, "Hi there\n", out.String())
}

func TestAskReportsStreamError(t *testing.T) {
	application := newAskApp(t, func(w http.ResponseWriter, r *http.Request) {
		sseReply(w, "event: error\ndata: {\"message\":\"backend down\"}\n\n")
	})

	var out bytes.Buffer
	err := ask(context.Background(), application.Dispatcher(), application.EventBus(), "hello", &out)
	assert.EqualError(t, err, "backend down")
}

func TestAskLocalCommand(t *testing.T) {
	application := newAskApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("local commands must not reach the backend")
	})

	var out bytes.Buffer
	require.NoError(t, ask(context.Background(), application.Dispatcher(), application.EventBus(), "ls", &out))
	assert.Contains(t, out.String(), "README.md")
}

func TestAskWaitsForResumeDownload(t *testing.T) {
	downloads := t.TempDir()
	application := newAskApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/resume.pdf" {
			t.Errorf("unexpected request %s", r.URL.Path)
			return
		}
		w.Write([]byte("%PDF-1.4"))
	}, func(cfg *config.Config, baseURL string) {
		cfg.Profiles[config.DefaultProfileName] = config.Profile{BaseURL: baseURL, ResumeURL: baseURL + "/files/resume.pdf"}
		cfg.DownloadDir = downloads
	})

	var out bytes.Buffer
	require.NoError(t, ask(context.Background(), application.Dispatcher(), application.EventBus(), "cat resume.pdf", &out))
	application.Stop()

	assert.Contains(t, out.String(), "Initiating download")
	assert.Contains(t, out.String(), "Resume saved to")
	data, err := os.ReadFile(filepath.Join(downloads, "resume.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestAskWithoutBackendFails(t *testing.T) {
	application := newAskApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, func(cfg *config.Config, _ string) {
		cfg.Profiles[config.DefaultProfileName] = config.Profile{}
	})

	var out bytes.Buffer
	err := ask(context.Background(), application.Dispatcher(), application.EventBus(), "hi", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No backend configured")
	assert.Empty(t, out.String())
}

func TestRemoveProfile(t *testing.T) {
	cfg := config.Default()
	cfg.Profiles["work"] = config.Profile{BaseURL: "https://twin.example.com"}
	cfg.ActiveProfile = "work"

	removeProfile(cfg, "work")
	assert.Equal(t, config.DefaultProfileName, cfg.ActiveProfile)

	removeProfile(cfg, config.DefaultProfileName)
	assert.Equal(t, config.DefaultProfileName, cfg.ActiveProfile)
	assert.Equal(t, config.Profile{}, cfg.Profiles[config.DefaultProfileName])
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL(false)(""))
	assert.Error(t, validateURL(true)(""))
	assert.Error(t, validateURL(true)("twin.example.com"))
	assert.NoError(t, validateURL(true)("https://twin.example.com"))

	assert.NoError(t, validateProfileName("work"))
	assert.Error(t, validateProfileName("my.work"))
	assert.Error(t, validateProfileName(" "))

	assert.Equal(t, 1, indexOf([]string{"named", "raw"}, "raw"))
	assert.Equal(t, 0, indexOf([]string{"named", "raw"}, ""))
}
