package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"tinfoiltimes/internal/domain"
	"tinfoiltimes/internal/ports"
)

// Schema for the theories table. Creation is idempotent and safe to run on
// every process start.
const schema = `
CREATE TABLE IF NOT EXISTS theories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slug TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	source_url TEXT NOT NULL,
	archive_url TEXT NOT NULL,
	source_name TEXT NOT NULL,
	score INTEGER NOT NULL,
	rating_tier TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_theories_rank ON theories(score DESC, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_theories_created ON theories(created_at);
`

var theoryColumns = []string{
	"id", "slug", "title", "body", "source_url",
	"archive_url", "source_name", "score", "rating_tier", "created_at",
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single writer keeps slug upserts atomic without busy-retry loops.
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteRepository persists theories. All SQL is built through squirrel;
// caller-controlled strings never reach a query.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.TheoryRepository = (*SQLiteRepository)(nil)

// NewSQLiteRepository wires a sql.DB implementation.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Init creates the schema, retrying once; a fresh file can report a
// transient lock if another process races the first start.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		if _, retryErr := r.db.ExecContext(ctx, schema); retryErr != nil {
			return &domain.StorageError{Op: "init schema", Err: retryErr}
		}
	}
	return nil
}

// Upsert inserts the record or replaces the mutable fields of the row with
// the same slug, preserving id and created_at. Last writer wins on
// concurrent upserts of one slug; readers never observe a partial row.
func (r *SQLiteRepository) Upsert(ctx context.Context, t domain.Theory) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := sq.Insert("theories").
		Columns("slug", "title", "body", "source_url", "archive_url",
			"source_name", "score", "rating_tier", "created_at").
		Values(t.Slug, t.Title, t.Body, t.SourceURL, t.ArchiveURL,
			t.SourceName, t.Score, t.RatingTier, createdAt).
		Suffix(`ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			source_url = excluded.source_url,
			archive_url = excluded.archive_url,
			source_name = excluded.source_name,
			score = excluded.score,
			rating_tier = excluded.rating_tier`).
		ToSql()
	if err != nil {
		return &domain.StorageError{Op: "build upsert", Err: err}
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &domain.StorageError{Op: "upsert theory", Err: err}
	}
	return nil
}

// List returns records in the requested order, truncated to limit. The
// order argument is a closed enum mapped to fixed ORDER BY clauses.
func (r *SQLiteRepository) List(ctx context.Context, order domain.ListOrder, limit int) ([]domain.Theory, error) {
	if limit <= 0 {
		return []domain.Theory{}, nil
	}

	query, args, err := sq.Select(theoryColumns...).
		From("theories").
		OrderBy(orderClause(order)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, &domain.StorageError{Op: "build list", Err: err}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "list theories", Err: err}
	}
	defer rows.Close()

	theories := []domain.Theory{}
	for rows.Next() {
		t, err := scanTheory(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "scan theory", Err: err}
		}
		theories = append(theories, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "iterate theories", Err: err}
	}

	return theories, nil
}

// GetBySlug returns the matching record or domain.ErrNotFound.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (domain.Theory, error) {
	query, args, err := sq.Select(theoryColumns...).
		From("theories").
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return domain.Theory{}, &domain.StorageError{Op: "build get", Err: err}
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	t, err := scanTheory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Theory{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Theory{}, &domain.StorageError{Op: "get theory", Err: err}
	}
	return t, nil
}

// CountRecentSince counts records created within the trailing window.
func (r *SQLiteRepository) CountRecentSince(ctx context.Context, window time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-window)

	query, args, err := sq.Select("COUNT(*)").
		From("theories").
		Where(sq.Gt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, &domain.StorageError{Op: "build count recent", Err: err}
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, &domain.StorageError{Op: "count recent", Err: err}
	}
	return count, nil
}

// Count returns the total number of records.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM theories").Scan(&count); err != nil {
		return 0, &domain.StorageError{Op: "count", Err: err}
	}
	return count, nil
}

// PruneOlderThan deletes the oldest records outside the retention window,
// never reducing the table below keepMinimum rows.
func (r *SQLiteRepository) PruneOlderThan(ctx context.Context, window time.Duration, keepMinimum int) (int, error) {
	cutoff := time.Now().UTC().Add(-window)

	total, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}

	budget := total - keepMinimum
	if budget <= 0 {
		return 0, nil
	}

	// Oldest-first so the keepMinimum floor retains the newest rows.
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM theories WHERE id IN (
			SELECT id FROM theories
			WHERE created_at < ?
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		)`, cutoff, budget)
	if err != nil {
		return 0, &domain.StorageError{Op: "prune theories", Err: err}
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, &domain.StorageError{Op: "prune rows affected", Err: err}
	}
	return int(deleted), nil
}

func orderClause(order domain.ListOrder) string {
	switch order {
	case domain.OrderAddedDesc:
		return "created_at DESC, id DESC"
	default:
		return "score DESC, created_at DESC, id DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTheory(row rowScanner) (domain.Theory, error) {
	var t domain.Theory
	err := row.Scan(
		&t.ID, &t.Slug, &t.Title, &t.Body, &t.SourceURL,
		&t.ArchiveURL, &t.SourceName, &t.Score, &t.RatingTier, &t.CreatedAt,
	)
	return t, err
}
