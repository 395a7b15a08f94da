package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/clue/log"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "termtwin.log")

	ctx, closeFn, err := Setup(context.Background(), Options{File: path, Debug: true})
	require.NoError(t, err)

	log.Info(ctx, log.KV{K: "msg", V: "hello"}, log.KV{K: "turn", V: "agent-1"})
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"turn":"agent-1"`)
	assert.Contains(t, string(data), "debug logs enabled")
}

func TestSetupWithoutDebugDropsDebugRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termtwin.log")

	ctx, closeFn, err := Setup(context.Background(), Options{File: path})
	require.NoError(t, err)

	log.Debug(ctx, log.KV{K: "msg", V: "noisy"})
	log.Warn(ctx, log.KV{K: "msg", V: "kept"})
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "noisy")
	assert.Contains(t, string(data), "kept")
}

func TestSetupWithoutFile(t *testing.T) {
	ctx, closeFn, err := Setup(context.Background(), Options{})
	require.NoError(t, err)
	log.Info(ctx, log.KV{K: "msg", V: "discarded"})
	assert.NoError(t, closeFn())
}
