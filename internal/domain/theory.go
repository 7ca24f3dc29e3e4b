package domain

import "time"

// Theory is the persisted record produced from one harvested candidate.
// Slug is the stable identity used for URLs and deduplication; ID and
// CreatedAt survive re-harvests of the same slug.
type Theory struct {
	ID         int64
	Slug       string
	Title      string
	Body       string
	SourceURL  string
	ArchiveURL string
	SourceName string
	Score      int
	RatingTier string
	CreatedAt  time.Time
}

// ListOrder enumerates the sort orders the repository accepts. Keeping this
// a closed set means caller input never reaches an ORDER BY clause.
type ListOrder int

const (
	// OrderScoreDesc sorts by score descending, ties broken newest-first.
	OrderScoreDesc ListOrder = iota
	// OrderAddedDesc sorts by creation time descending.
	OrderAddedDesc
)
