package sse

import (
	"encoding/json"
	"strings"
)

const dataMarker = "data:"

// SplitPayloads extracts complete data frames from a growing buffer.
//
// A frame starts at "data:" and ends at a blank line or at the next "data:"
// marker, so servers that omit separators between adjacent frames still
// split correctly. An unterminated trailing frame is emitted only when it is
// already valid JSON; otherwise it is returned in rest and should be
// prepended to the next read. Empty payloads are dropped.
//
// When no "data:" marker is left, rest starts after the last blank line
// rather than at the scan position, so keepalive comment blocks on an idle
// stream are discarded instead of accumulating until the next frame.
func SplitPayloads(buffer string) (payloads []string, rest string) {
	if buffer == "" {
		return nil, ""
	}
	normalized := strings.ReplaceAll(buffer, "\r\n", "\n")

	cursor := 0
	for cursor < len(normalized) {
		start := strings.Index(normalized[cursor:], dataMarker)
		if start < 0 {
			// Keep at most the tail after the last complete block; comments
			// and bare event lines before it can never become payloads.
			if sep := strings.LastIndex(normalized[cursor:], "\n\n"); sep >= 0 {
				cursor += sep + 2
			}
			break
		}
		start += cursor

		payloadStart := start + len(dataMarker)
		if payloadStart < len(normalized) && normalized[payloadStart] == ' ' {
			payloadStart++
		}

		nextData := indexFrom(normalized, dataMarker, payloadStart)
		blank := indexFrom(normalized, "\n\n", payloadStart)

		if blank >= 0 && (nextData < 0 || blank < nextData) {
			payloads = appendPayload(payloads, normalized[payloadStart:blank])
			cursor = blank + 2
			continue
		}
		if nextData >= 0 {
			payloads = appendPayload(payloads, normalized[payloadStart:nextData])
			cursor = nextData
			continue
		}

		candidate := strings.TrimSpace(normalized[payloadStart:])
		if candidate != "" && json.Valid([]byte(candidate)) {
			payloads = append(payloads, candidate)
			cursor = len(normalized)
			break
		}
		cursor = start
		break
	}

	return payloads, normalized[cursor:]
}

func appendPayload(payloads []string, raw string) []string {
	if p := strings.TrimSpace(raw); p != "" {
		return append(payloads, p)
	}
	return payloads
}

func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i < 0 {
		return -1
	}
	return i + from
}
