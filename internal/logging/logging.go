// Package logging sets up the clue logger carried on contexts. The TUI owns
// the terminal, so log records go to a file instead of stderr.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"goa.design/clue/log"
)

// Options selects where and how much to log.
type Options struct {
	// File is the log file. Empty discards all records.
	File  string
	Debug bool
}

// Setup returns a context carrying a JSON logger writing to opts.File. The
// returned close function flushes and releases the file.
func Setup(ctx context.Context, opts Options) (context.Context, func() error, error) {
	if opts.File == "" {
		return log.Context(ctx, log.WithFormat(log.FormatJSON), log.WithOutput(io.Discard)), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return ctx, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	ctx = log.Context(ctx,
		log.WithFormat(log.FormatJSON),
		log.WithOutput(file),
		log.WithDisableBuffering(alwaysWrite))
	if opts.Debug {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}

	closeFn := func() error {
		log.FlushAndDisableBuffering(ctx)
		return file.Close()
	}
	return ctx, closeFn, nil
}

func alwaysWrite(context.Context) bool { return true }
