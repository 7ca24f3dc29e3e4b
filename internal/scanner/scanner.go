// Package scanner defines the source-adapter contract: each adapter turns
// one fetched endpoint into a list of candidates.
package scanner

import (
	"context"
	"fmt"
	"strings"
)

// Candidate is a (title, body, url) triple extracted from a source before
// scoring, slugging, and storage. URL is always absolute.
type Candidate struct {
	Title string
	Body  string
	URL   string
}

// Request carries the endpoint configuration for one extraction run.
type Request struct {
	SourceName string
	URL        string
	Selectors  map[string]string
}

// Source captures a single extraction strategy (forum HTML, reddit feed).
// Implementations must treat transport and shape failures as non-fatal:
// warn and return an empty list rather than an error that would abort the
// whole harvest cycle.
type Source interface {
	Name() string
	Extract(ctx context.Context, req Request) ([]Candidate, error)
}

// TitleGate rejects candidates whose title is implausibly short (navigation
// noise) or long (degenerate extraction).
type TitleGate struct {
	Min int
	Max int
}

// Accept reports whether a trimmed title passes the length gate.
func (g TitleGate) Accept(title string) bool {
	n := len(strings.TrimSpace(title))
	return n >= g.Min && n <= g.Max
}

// Registry keeps a mapping from adapter type names to implementations.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by adapter type name or an error if absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("adapter %s is not registered", name)
}
