package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// RecordJob writes an audit record of one LLM Client invocation, for the
// operator "status" command — never read by the pipeline itself.
func (s *Store) RecordJob(ctx context.Context, j *models.AIAnalysisJob) error {
	var errStr sql.NullString
	if j.Error != nil {
		errStr = sql.NullString{String: *j.Error, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_analysis_jobs (id, kind, cluster_id, succeeded, error, duration_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, j.ID, string(j.Kind), j.ClusterID, j.Succeeded, errStr, j.DurationMS)
	if err != nil {
		return fmt.Errorf("store: record job: %w", err)
	}
	return nil
}

// RecentJobStats summarizes success/failure counts for the operator
// "status" command.
type RecentJobStats struct {
	Kind      string
	Succeeded int
	Failed    int
}

func (s *Store) RecentJobStats(ctx context.Context) ([]RecentJobStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind,
			count(*) FILTER (WHERE succeeded) AS succeeded,
			count(*) FILTER (WHERE NOT succeeded) AS failed
		FROM ai_analysis_jobs
		GROUP BY kind ORDER BY kind
	`)
	if err != nil {
		return nil, fmt.Errorf("store: recent job stats: %w", err)
	}
	defer rows.Close()
	var out []RecentJobStats
	for rows.Next() {
		var r RecentJobStats
		if err := rows.Scan(&r.Kind, &r.Succeeded, &r.Failed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
