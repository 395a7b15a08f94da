package portfolio

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"goa.design/clue/log"
)

// FallbackIP is reported when the lookup fails.
const FallbackIP = "127.0.0.1"

// LookupIP asks the configured service for the visitor's public address.
// It never fails; any problem yields FallbackIP.
func (c *Client) LookupIP(ctx context.Context) string {
	if c.opts.IPLookupURL == "" {
		return FallbackIP
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.IPLookupURL, nil)
	if err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "ip lookup request"}, log.KV{K: "err", V: err.Error()})
		return FallbackIP
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "ip lookup failed"}, log.KV{K: "err", V: err.Error()})
		return FallbackIP
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Warn(ctx, log.KV{K: "msg", V: "ip lookup failed"}, log.KV{K: "status", V: resp.StatusCode})
		return FallbackIP
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || strings.TrimSpace(body.IP) == "" {
		return FallbackIP
	}
	return strings.TrimSpace(body.IP)
}
