package ports

import (
	"context"
	"time"

	"tinfoiltimes/internal/domain"
)

// TheoryRepository owns the persisted theories table. It is the only
// component that touches the storage engine.
type TheoryRepository interface {
	// Upsert inserts the record or, when the slug exists, replaces its
	// mutable fields while preserving id and createdAt.
	Upsert(ctx context.Context, theory domain.Theory) error
	// List returns at most limit records in the requested order. An empty
	// table yields an empty slice, not an error.
	List(ctx context.Context, order domain.ListOrder, limit int) ([]domain.Theory, error)
	// GetBySlug returns the record or domain.ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (domain.Theory, error)
	// CountRecentSince counts records created within the trailing window.
	CountRecentSince(ctx context.Context, window time.Duration) (int, error)
	// Count returns the total number of records.
	Count(ctx context.Context) (int, error)
	// PruneOlderThan deletes records older than the window without reducing
	// the table below keepMinimum rows; returns the number deleted.
	PruneOlderThan(ctx context.Context, window time.Duration, keepMinimum int) (int, error)
}

// Fetcher is the network transport adapters depend on. Non-2xx responses
// and timeouts surface as *domain.TransportError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (status int, body []byte, err error)
}

// Archiver produces a best-effort permanent-copy link for a source URL.
type Archiver interface {
	Snapshot(ctx context.Context, url string) (string, error)
}
