package parser

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tinfoiltimes/internal/ports"
	"tinfoiltimes/internal/scanner"
)

// Default selectors cover the common thread-list markup of the forums in
// the default source set; per-source overrides come from config.
const (
	defaultItemSelector  = "article.post, div.thread, li.thread"
	defaultTitleSelector = "h2, .title, .thread-title"
	defaultBodySelector  = "p, .excerpt, .thread-body"
	defaultLinkSelector  = "a"
)

// ForumScanner extracts candidates from an HTML thread listing.
type ForumScanner struct {
	fetcher ports.Fetcher
	gate    scanner.TitleGate
	logger  *slog.Logger
}

var _ scanner.Source = (*ForumScanner)(nil)

// NewForumScanner wires the shared fetch transport and title gate.
func NewForumScanner(fetcher ports.Fetcher, gate scanner.TitleGate, logger *slog.Logger) *ForumScanner {
	return &ForumScanner{fetcher: fetcher, gate: gate, logger: logger}
}

// Name identifies the adapter type inside the registry.
func (f *ForumScanner) Name() string {
	return "forum"
}

// Extract fetches the listing page and returns candidates in document
// order. Transport failures and unexpected page shapes yield an empty list
// with a warning; they never abort the harvest cycle.
func (f *ForumScanner) Extract(ctx context.Context, req scanner.Request) ([]scanner.Candidate, error) {
	status, body, err := f.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		f.warn("forum fetch failed", "source", req.SourceName, "url", req.URL, "status", status, "error", err)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		f.warn("forum page unparsable", "source", req.SourceName, "url", req.URL, "error", err)
		return nil, nil
	}

	base, err := url.Parse(req.URL)
	if err != nil {
		f.warn("forum base url invalid", "source", req.SourceName, "url", req.URL, "error", err)
		return nil, nil
	}

	itemSel := selector(req.Selectors, "item", defaultItemSelector)
	titleSel := selector(req.Selectors, "title", defaultTitleSelector)
	bodySel := selector(req.Selectors, "body", defaultBodySelector)
	linkSel := selector(req.Selectors, "link", defaultLinkSelector)

	var candidates []scanner.Candidate
	doc.Find(itemSel).Each(func(i int, item *goquery.Selection) {
		title := collapseSpace(item.Find(titleSel).First().Text())
		if !f.gate.Accept(title) {
			return
		}

		href, _ := item.Find(linkSel).First().Attr("href")
		link := resolveURL(base, href)
		if link == "" {
			return
		}

		candidates = append(candidates, scanner.Candidate{
			Title: title,
			Body:  collapseSpace(item.Find(bodySel).First().Text()),
			URL:   link,
		})
	})

	return candidates, nil
}

func (f *ForumScanner) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func selector(selectors map[string]string, key, fallback string) string {
	if v, ok := selectors[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// resolveURL makes href absolute against the endpoint base URL.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
