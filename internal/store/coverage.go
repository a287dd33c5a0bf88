package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// UpsertCoverageTx writes a cluster's coverage record, replacing any prior
// row wholesale — coverage is a pure derivation, never patched (§9).
func UpsertCoverageTx(ctx context.Context, tx *sql.Tx, c *models.CoverageRecord) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO story_coverage (cluster_id, left_count, center_count, right_count, total,
			coverage_score, first_reported_at, last_updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (cluster_id) DO UPDATE SET
			left_count = EXCLUDED.left_count,
			center_count = EXCLUDED.center_count,
			right_count = EXCLUDED.right_count,
			total = EXCLUDED.total,
			coverage_score = EXCLUDED.coverage_score,
			first_reported_at = EXCLUDED.first_reported_at,
			last_updated_at = EXCLUDED.last_updated_at
	`, c.ClusterID, c.LeftCount, c.CenterCount, c.RightCount, c.Total, c.CoverageScore, c.FirstReportedAt, c.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert coverage: %w", err)
	}
	return nil
}

// GetCoverage fetches a cluster's coverage record.
func (s *Store) GetCoverage(ctx context.Context, clusterID string) (*models.CoverageRecord, error) {
	var c models.CoverageRecord
	c.ClusterID = clusterID
	err := s.db.QueryRowContext(ctx, `
		SELECT left_count, center_count, right_count, total, coverage_score, first_reported_at, last_updated_at
		FROM story_coverage WHERE cluster_id = $1
	`, clusterID).Scan(&c.LeftCount, &c.CenterCount, &c.RightCount, &c.Total, &c.CoverageScore, &c.FirstReportedAt, &c.LastUpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get coverage: %w", err)
	}
	return &c, nil
}

// AnalyticsOverview aggregates total clusters, average coverage score, and
// active blindspot count for the analytics endpoint.
type AnalyticsOverview struct {
	TotalClusters    int
	AverageCoverage  float64
	BlindspotCount   int
}

// Analytics computes the overview figures directly from current state.
func (s *Store) Analytics(ctx context.Context) (*AnalyticsOverview, error) {
	var out AnalyticsOverview
	row := s.db.QueryRowContext(ctx, `SELECT count(*), coalesce(avg(coverage_score), 0) FROM story_coverage`)
	if err := row.Scan(&out.TotalClusters, &out.AverageCoverage); err != nil {
		return nil, fmt.Errorf("store: analytics overview: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM blindspots WHERE dismissed = false`).Scan(&out.BlindspotCount); err != nil {
		return nil, fmt.Errorf("store: analytics blindspot count: %w", err)
	}
	return &out, nil
}

// BiasHistogram buckets bias-analyzed articles by rounded political
// leaning, for the bias distribution histogram endpoint.
func (s *Store) BiasHistogram(ctx context.Context) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT round(political_leaning * 10)::int AS bucket, count(*)
		FROM articles WHERE bias_analyzed = true AND political_leaning IS NOT NULL
		GROUP BY bucket ORDER BY bucket
	`)
	if err != nil {
		return nil, fmt.Errorf("store: bias histogram: %w", err)
	}
	defer rows.Close()
	out := map[int]int{}
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, err
		}
		out[bucket] = count
	}
	return out, rows.Err()
}
