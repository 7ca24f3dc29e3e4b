package parser

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"

	"tinfoiltimes/internal/ports"
	"tinfoiltimes/internal/scanner"
)

// redditListing mirrors the old-reddit JSON listing shape; only the fields
// the pipeline consumes are declared.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title     string `json:"title"`
				SelfText  string `json:"selftext"`
				Permalink string `json:"permalink"`
				URL       string `json:"url"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditScanner extracts candidates from a subreddit JSON listing.
type RedditScanner struct {
	fetcher ports.Fetcher
	gate    scanner.TitleGate
	logger  *slog.Logger
}

var _ scanner.Source = (*RedditScanner)(nil)

// NewRedditScanner wires the shared fetch transport and title gate.
func NewRedditScanner(fetcher ports.Fetcher, gate scanner.TitleGate, logger *slog.Logger) *RedditScanner {
	return &RedditScanner{fetcher: fetcher, gate: gate, logger: logger}
}

// Name identifies the adapter type inside the registry.
func (r *RedditScanner) Name() string {
	return "reddit"
}

// Extract fetches the listing and returns candidates in feed order. A post
// links to its permalink (the discussion), resolved against the endpoint
// host. Failures yield an empty list with a warning.
func (r *RedditScanner) Extract(ctx context.Context, req scanner.Request) ([]scanner.Candidate, error) {
	status, body, err := r.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		r.warn("reddit fetch failed", "source", req.SourceName, "url", req.URL, "status", status, "error", err)
		return nil, nil
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		r.warn("reddit listing unparsable", "source", req.SourceName, "url", req.URL, "error", err)
		return nil, nil
	}

	base, err := url.Parse(req.URL)
	if err != nil {
		r.warn("reddit base url invalid", "source", req.SourceName, "url", req.URL, "error", err)
		return nil, nil
	}

	var candidates []scanner.Candidate
	for _, child := range listing.Data.Children {
		post := child.Data
		title := collapseSpace(post.Title)
		if !r.gate.Accept(title) {
			continue
		}

		link := resolveURL(base, post.Permalink)
		if link == "" {
			link = resolveURL(base, post.URL)
		}
		if link == "" {
			continue
		}

		candidates = append(candidates, scanner.Candidate{
			Title: title,
			Body:  post.SelfText,
			URL:   link,
		})
	}

	return candidates, nil
}

func (r *RedditScanner) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
