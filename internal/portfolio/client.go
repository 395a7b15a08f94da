// Package portfolio talks to the small side endpoints around the chat
// stream: the contact form, the visitor IP lookup and the resume download.
package portfolio

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultContactPath     = "/api/v1/contact"
	DefaultContactInterval = 30 * time.Second
	DefaultTimeout         = 15 * time.Second

	userAgent = "TermTwin/1.0"
)

type Options struct {
	// BaseURL is used to derive the contact endpoint when ContactURL is empty.
	BaseURL     string
	ContactURL  string
	ResumeURL   string
	IPLookupURL string
	// Headers are added to contact and resume requests, e.g. CF-Access credentials.
	Headers map[string]string

	// ContactInterval is the minimum spacing between contact submissions.
	ContactInterval time.Duration
	HTTPClient      *http.Client
}

type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(opts Options) *Client {
	if opts.ContactInterval <= 0 {
		opts.ContactInterval = DefaultContactInterval
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		opts:    opts,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(opts.ContactInterval), 1),
	}
}

func (c *Client) contactURL() (string, error) {
	if c.opts.ContactURL != "" {
		return c.opts.ContactURL, nil
	}
	if c.opts.BaseURL == "" {
		return "", fmt.Errorf("contact endpoint is not configured")
	}
	return url.JoinPath(c.opts.BaseURL, DefaultContactPath)
}

func (c *Client) decorate(req *http.Request) {
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", userAgent)
}

// drain discards what is left of body so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}
