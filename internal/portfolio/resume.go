package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

var ErrNoResume = errors.New("resume download is not configured")

const defaultResumeName = "resume.pdf"

// DownloadResume fetches the resume into dir and returns the written path.
// A partially written file is removed on failure.
func (c *Client) DownloadResume(ctx context.Context, dir string) (string, error) {
	if c.opts.ResumeURL == "" {
		return "", ErrNoResume
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.ResumeURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("resume download failed: %w", err)
	}
	defer drain(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("resume download failed: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	target := filepath.Join(dir, resumeName(c.opts.ResumeURL))
	file, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(target)
		return "", fmt.Errorf("failed to write resume: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to write resume: %w", err)
	}
	return target, nil
}

func resumeName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultResumeName
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultResumeName
	}
	return name
}
