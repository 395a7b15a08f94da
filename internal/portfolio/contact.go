package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

var (
	ErrInvalidEmail = errors.New("please enter a valid email address")
	ErrEmptyMessage = errors.New("message must not be empty")
	ErrRateLimited  = errors.New("please wait before sending another message")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type contactPayload struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ValidateContact checks a submission without sending it.
func ValidateContact(email, message string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(message) == "" {
		return ErrEmptyMessage
	}
	return nil
}

// SubmitContact posts the contact form. Invalid input does not consume the
// rate limit.
func (c *Client) SubmitContact(ctx context.Context, email, message string) error {
	if err := ValidateContact(email, message); err != nil {
		return err
	}
	if !c.limiter.Allow() {
		return ErrRateLimited
	}

	endpoint, err := c.contactURL()
	if err != nil {
		return err
	}

	body, err := json.Marshal(contactPayload{
		Email:   strings.TrimSpace(email),
		Message: strings.TrimSpace(message),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal contact payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact request failed: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var failure struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &failure) == nil && failure.Error != "" {
		return errors.New(failure.Error)
	}
	return fmt.Errorf("contact request failed: %d", resp.StatusCode)
}
