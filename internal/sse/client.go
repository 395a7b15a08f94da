package sse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goa.design/clue/log"

	"github.com/Rorical/TermTwin/internal/stream"
)

// Mode selects how the response body is framed.
type Mode string

const (
	// ModeNamed reads event:/data: frames and dispatches by event name.
	ModeNamed Mode = "named"
	// ModeRaw reframes a proxied body of data: blocks with SplitPayloads.
	ModeRaw Mode = "raw"
)

const DefaultStreamPath = "/api/v1/chat/stream"

// Options configures a Client.
type Options struct {
	BaseURL string
	Path    string
	Mode    Mode
	Headers map[string]string

	// ConnectTimeout bounds the wait for the first bytes of the body.
	ConnectTimeout time.Duration
	// IdleTimeout bounds the gap between reads once the body is flowing.
	IdleTimeout time.Duration

	HTTPClient *http.Client
}

// Client opens chat streams against the backend.
type Client struct {
	opts    Options
	httpCli *http.Client
	parser  *stream.Parser
}

func NewClient(opts Options, parser *stream.Parser) *Client {
	if opts.Path == "" {
		opts.Path = DefaultStreamPath
	}
	if opts.Mode == "" {
		opts.Mode = ModeNamed
	}
	httpCli := opts.HTTPClient
	if httpCli == nil {
		// no overall timeout; the watchdog handles stalls
		httpCli = &http.Client{}
	}
	if parser == nil {
		parser = stream.NewParser(nil)
	}
	return &Client{opts: opts, httpCli: httpCli, parser: parser}
}

// Mode returns the framing mode in use.
func (c *Client) Mode() Mode {
	return c.opts.Mode
}

// Stream sends message and delivers parsed events to handle in arrival order
// until a complete or error event, the end of the body, or ctx is done.
// Skip events are logged and never delivered.
func (c *Client) Stream(ctx context.Context, sessionID, message string, handle func(stream.Event)) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	activity := make(chan struct{}, 1)
	go c.watch(ctx, cancel, activity)

	endpoint, err := c.endpoint(sessionID, message)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}

	log.Debug(ctx, log.KV{K: "msg", V: "opening chat stream"}, log.KV{K: "url", V: endpoint}, log.KV{K: "mode", V: string(c.opts.Mode)})

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return c.cause(ctx, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if c.opts.Mode == ModeNamed {
		mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if mediaType != "text/event-stream" {
			return fmt.Errorf("%w: got %q", ErrNotEventStream, resp.Header.Get("Content-Type"))
		}
	}

	body := &activityReader{r: resp.Body, activity: activity}

	var done bool
	deliver := func(ev stream.Event) {
		if skip, ok := ev.(stream.Skip); ok {
			if strings.HasPrefix(skip.Reason, "unknown") {
				log.Warn(ctx, log.KV{K: "msg", V: "skipped stream payload"}, log.KV{K: "reason", V: skip.Reason})
			} else {
				log.Debug(ctx, log.KV{K: "msg", V: "skipped stream payload"}, log.KV{K: "reason", V: skip.Reason})
			}
			return
		}
		handle(ev)
		if stream.IsTerminal(ev) {
			done = true
		}
	}

	if c.opts.Mode == ModeRaw {
		err = c.readRaw(body, deliver, &done)
	} else {
		err = c.readNamed(body, deliver, &done)
	}
	if done {
		return nil
	}
	if err != nil {
		return c.cause(ctx, err)
	}
	return ErrStreamClosed
}

func (c *Client) readNamed(body io.Reader, deliver func(stream.Event), done *bool) error {
	reader := NewReader(body)
	for !*done {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		deliver(c.parser.ParseNamed(frame.Event, frame.Data))
	}
	return nil
}

func (c *Client) readRaw(body io.Reader, deliver func(stream.Event), done *bool) error {
	var (
		buf   string
		chunk = make([]byte, 4096)
	)
	for !*done {
		n, err := body.Read(chunk)
		if n > 0 {
			payloads, rest := SplitPayloads(buf + string(chunk[:n]))
			buf = rest
			for _, p := range payloads {
				deliver(c.parser.Parse(p))
				if *done {
					return nil
				}
			}
		}
		if errors.Is(err, io.EOF) {
			// flush a final frame the server never terminated
			payloads, _ := SplitPayloads(buf + "\n\n")
			for _, p := range payloads {
				deliver(c.parser.Parse(p))
				if *done {
					return nil
				}
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
	}
	return nil
}

func (c *Client) endpoint(sessionID, message string) (string, error) {
	base, err := url.Parse(strings.TrimRight(c.opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid base url %q", c.opts.BaseURL)
	}
	u := base.JoinPath(c.opts.Path)
	q := u.Query()
	q.Set("sessionId", sessionID)
	q.Set("message", message)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// watch cancels the stream when the body stalls.
func (c *Client) watch(ctx context.Context, cancel context.CancelCauseFunc, activity <-chan struct{}) {
	timeout, cause := c.opts.ConnectTimeout, ErrFirstEventTimeout
	var timer *time.Timer
	var fire <-chan time.Time
	arm := func() {
		if timer != nil {
			timer.Stop()
		}
		if timeout <= 0 {
			fire = nil
			return
		}
		timer = time.NewTimer(timeout)
		fire = timer.C
	}
	arm()
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-activity:
			timeout, cause = c.opts.IdleTimeout, ErrIdleTimeout
			arm()
		case <-fire:
			log.Warn(ctx, log.KV{K: "msg", V: "chat stream stalled"}, log.KV{K: "cause", V: cause.Error()})
			cancel(cause)
			return
		}
	}
}

// cause prefers the watchdog reason over the transport's context error.
func (c *Client) cause(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil && IsTimeout(cause) {
		return cause
	}
	return err
}

type activityReader struct {
	r        io.Reader
	activity chan<- struct{}
}

func (a *activityReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	if n > 0 {
		select {
		case a.activity <- struct{}{}:
		default:
		}
	}
	return n, err
}
