package store

import (
	"context"
	"fmt"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// ActiveBlindspotExists checks for a non-dismissed blindspot already
// recorded for this user/cluster pair, so the Coverage Tracker never
// duplicates one (§4.7).
func (s *Store) ActiveBlindspotExists(ctx context.Context, userID, clusterID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM blindspots WHERE user_id = $1 AND cluster_id = $2 AND dismissed = false)
	`, userID, clusterID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: active blindspot exists: %w", err)
	}
	return exists, nil
}

// InsertBlindspot records a new blindspot advisory.
func (s *Store) InsertBlindspot(ctx context.Context, b *models.Blindspot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blindspots (id, user_id, cluster_id, kind, severity, description, suggested_sources, dismissed, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,false,now())
	`, b.ID, b.UserID, b.ClusterID, string(b.Kind), string(b.Severity), b.Description, b.SuggestedSources)
	if err != nil {
		return fmt.Errorf("store: insert blindspot: %w", err)
	}
	return nil
}

// ListUserBlindspots returns a user's non-dismissed blindspots.
func (s *Store) ListUserBlindspots(ctx context.Context, userID string) ([]models.Blindspot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, cluster_id, kind, severity, description, suggested_sources, dismissed, created_at
		FROM blindspots WHERE user_id = $1 AND dismissed = false ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list user blindspots: %w", err)
	}
	defer rows.Close()

	var out []models.Blindspot
	for rows.Next() {
		var b models.Blindspot
		var kind, severity string
		var sources models.StringArray
		if err := rows.Scan(&b.ID, &b.UserID, &b.ClusterID, &kind, &severity, &b.Description, &sources, &b.Dismissed, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan blindspot: %w", err)
		}
		b.Kind = models.BlindspotKind(kind)
		b.Severity = models.BlindspotSeverity(severity)
		b.SuggestedSources = sources
		out = append(out, b)
	}
	return out, rows.Err()
}

// DismissBlindspot marks a blindspot dismissed, a user-scoped write the
// Read API performs directly (not part of the pipeline's hot path).
func (s *Store) DismissBlindspot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE blindspots SET dismissed = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: dismiss blindspot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: dismiss blindspot rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
