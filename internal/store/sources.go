package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// ErrNotFound is returned by single-row lookups when no row matches.
var ErrNotFound = errors.New("store: not found")

// UpsertSource inserts a source or updates its name/home/bias by feed URL,
// matching the "seed-sources" operator command's bulk-upsert contract.
func (s *Store) UpsertSource(ctx context.Context, src *models.Source) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, home_url, feed_url, bias, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (feed_url) DO UPDATE SET
			name = EXCLUDED.name,
			home_url = EXCLUDED.home_url,
			bias = EXCLUDED.bias
	`, src.ID, src.Name, src.HomeURL, src.FeedURL, string(src.Bias))
	if err != nil {
		return fmt.Errorf("store: upsert source: %w", err)
	}
	return nil
}

// ListKnownBiasSources returns every source whose bias is not "unknown" —
// the set both Feed Reader and Clustering Engine operate over.
func (s *Store) ListKnownBiasSources(ctx context.Context) ([]models.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, home_url, feed_url, bias, last_fetch_at, created_at
		FROM sources WHERE bias != 'unknown' AND feed_url != ''
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list sources: %w", err)
	}
	defer rows.Close()
	return scanSources(rows)
}

// ListAllSources returns every source regardless of bias, for the
// operator's "status" command.
func (s *Store) ListAllSources(ctx context.Context) ([]models.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, home_url, feed_url, bias, last_fetch_at, created_at
		FROM sources ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list all sources: %w", err)
	}
	defer rows.Close()
	return scanSources(rows)
}

// GetSource fetches a single source by id, for the Bias Analyzer's prompt
// construction (source name + declared bias per member article).
func (s *Store) GetSource(ctx context.Context, id string) (*models.Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, home_url, feed_url, bias, last_fetch_at, created_at
		FROM sources WHERE id = $1
	`, id)
	var src models.Source
	var bias string
	var lastFetch sql.NullTime
	if err := row.Scan(&src.ID, &src.Name, &src.HomeURL, &src.FeedURL, &bias, &lastFetch, &src.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get source: %w", err)
	}
	src.Bias = models.BiasLabel(bias)
	if lastFetch.Valid {
		src.LastFetchAt = lastFetch.Time
	}
	return &src, nil
}

func scanSources(rows *sql.Rows) ([]models.Source, error) {
	var out []models.Source
	for rows.Next() {
		var src models.Source
		var bias string
		var lastFetch sql.NullTime
		if err := rows.Scan(&src.ID, &src.Name, &src.HomeURL, &src.FeedURL, &bias, &lastFetch, &src.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan source: %w", err)
		}
		src.Bias = models.BiasLabel(bias)
		if lastFetch.Valid {
			src.LastFetchAt = lastFetch.Time
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// TouchSourceFetchedAt updates a source's last-fetch timestamp; called once
// per source per Feed Reader run regardless of how many articles it yielded.
func (s *Store) TouchSourceFetchedAt(ctx context.Context, sourceID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sources SET last_fetch_at = $2 WHERE id = $1`, sourceID, at)
	if err != nil {
		return fmt.Errorf("store: touch source fetched_at: %w", err)
	}
	return nil
}
