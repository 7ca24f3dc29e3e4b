// Package fetch implements the HTTP transport source adapters depend on:
// redirect-following, browser-like identity, charset normalization, and a
// per-host robots.txt courtesy check.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html/charset"

	"tinfoiltimes/internal/domain"
)

const (
	maxRedirects  = 10
	maxBodyBytes  = 4 << 20
	userAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	robotsAgent   = "tinfoiltimes"
	defaultWindow = 20 * time.Second
)

// Client fetches pages with a bounded timeout. Safe for concurrent use.
type Client struct {
	http   *http.Client
	logger *slog.Logger

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

// NewClient builds a transport with the given per-fetch timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultWindow
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		logger: logger,
		robots: map[string]*robotstxt.Group{},
	}
}

// Fetch retrieves a page and returns its status code and UTF-8 body.
// URLs disallowed by the host's robots.txt, transport failures, and non-2xx
// statuses all surface as *domain.TransportError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (int, []byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return 0, nil, &domain.TransportError{URL: rawURL, Err: fmt.Errorf("invalid url")}
	}

	if !c.allowed(ctx, parsed) {
		return 0, nil, &domain.TransportError{URL: rawURL, Err: fmt.Errorf("disallowed by robots.txt")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, &domain.TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Referer", "https://www.google.com/")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &domain.TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil, &domain.TransportError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &domain.TransportError{URL: rawURL, Err: err}
	}

	return resp.StatusCode, body, nil
}

// allowed checks the cached robots.txt group for the URL's host. Hosts whose
// robots.txt cannot be fetched or parsed are treated as permissive.
func (c *Client) allowed(ctx context.Context, u *url.URL) bool {
	c.mu.Lock()
	group, ok := c.robots[u.Host]
	c.mu.Unlock()

	if !ok {
		group = c.loadRobots(ctx, u)
		c.mu.Lock()
		c.robots[u.Host] = group
		c.mu.Unlock()
	}

	if group == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (c *Client) loadRobots(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.debug("robots.txt unavailable", "host", u.Host, "error", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		c.debug("robots.txt unparsable", "host", u.Host, "error", err)
		return nil
	}

	return data.FindGroup(robotsAgent)
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
