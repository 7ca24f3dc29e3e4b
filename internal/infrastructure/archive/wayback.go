// Package archive requests best-effort permanent copies from the Wayback
// Machine. Failures are expected and never block the write path; callers
// fall back to the original URL.
package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"tinfoiltimes/internal/ports"
)

const defaultBaseURL = "https://web.archive.org"

// Client triggers Wayback snapshots.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ports.Archiver = (*Client)(nil)

// NewClient builds an archiver with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the Wayback endpoint (for testing).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Snapshot asks Wayback to capture the URL and returns the snapshot link.
// The save endpoint redirects to the capture; the final request URL is the
// permanent copy.
func (c *Client) Snapshot(ctx context.Context, target string) (string, error) {
	saveURL := c.baseURL + "/save/" + target

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, saveURL, nil)
	if err != nil {
		return "", fmt.Errorf("build snapshot request: %w", err)
	}
	req.Header.Set("User-Agent", "tinfoiltimes/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request snapshot: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("wayback returned %s", resp.Status)
	}

	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String(), nil
	}
	return saveURL, nil
}
