package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Index is the narrow full-text-index contract the Read API's search
// endpoint and the Bias Analyzer's write-back depend on. It is satisfied by
// *tsvectorIndex below; no external document-store client exists anywhere
// in the reference stack, so the "document store" from §6 is realized as
// a tsvector column on the same articles table rather than a second
// system — see DESIGN.md for the justification.
type Index interface {
	// Refresh (re)builds an article's search document and flips its
	// indexed flag true only after the write is acknowledged.
	Refresh(ctx context.Context, articleID string) error
	// Search runs a free-text query, returning matching article ids in
	// relevance order.
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

type tsvectorIndex struct {
	db *sql.DB
}

// Index returns this Store's Index implementation.
func (s *Store) Index() Index {
	return &tsvectorIndex{db: s.db}
}

func (i *tsvectorIndex) Refresh(ctx context.Context, articleID string) error {
	res, err := i.db.ExecContext(ctx, `
		UPDATE articles SET
			search_vector = setweight(to_tsvector('english', coalesce(title,'')), 'A') ||
				setweight(to_tsvector('english', coalesce(summary,'')), 'B') ||
				setweight(to_tsvector('english', coalesce(framing_note,'')), 'C'),
			indexed = true
		WHERE id = $1
	`, articleID)
	if err != nil {
		return fmt.Errorf("store: refresh index: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: refresh index rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (i *tsvectorIndex) Search(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT id FROM articles
		WHERE indexed AND search_vector @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(search_vector, plainto_tsquery('english', $1)) DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
