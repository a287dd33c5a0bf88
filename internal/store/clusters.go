package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// CreateClusterTx inserts a new cluster row and assigns every member's
// cluster id, all inside the caller's transaction — the "cluster-create +
// member assign" boundary from §5. Callers are responsible for having
// already verified I1/I2 before calling this; a constraint violation here
// rolls back the whole transaction.
func CreateClusterTx(ctx context.Context, tx *sql.Tx, cluster *models.Cluster, memberArticleIDs []string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO article_groups (id, display_name, master_article_id, analysis_complete, created_at)
		VALUES ($1, $2, $3, false, now())
	`, cluster.ID, cluster.DisplayName, cluster.MasterArticleID)
	if err != nil {
		return fmt.Errorf("store: create cluster: %w", err)
	}
	for _, articleID := range memberArticleIDs {
		if err := AssignClusterTx(ctx, tx, articleID, cluster.ID); err != nil {
			return err
		}
	}
	return nil
}

// AttachToClusterTx adds one article to an existing cluster (incremental
// ingestion path), inside the caller's transaction.
func AttachToClusterTx(ctx context.Context, tx *sql.Tx, articleID, clusterID string) error {
	return AssignClusterTx(ctx, tx, articleID, clusterID)
}

// DeleteClusterTx removes a cluster row (I4 singleton cleanup, or a
// dissolved mega-cluster bucket); callers must have already ungrouped its
// members in the same transaction.
func DeleteClusterTx(ctx context.Context, tx *sql.Tx, clusterID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM story_coverage WHERE cluster_id = $1`, clusterID); err != nil {
		return fmt.Errorf("store: delete coverage for cluster: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_groups WHERE id = $1`, clusterID); err != nil {
		return fmt.Errorf("store: delete cluster: %w", err)
	}
	return nil
}

// GetCluster fetches a single cluster by id.
func (s *Store) GetCluster(ctx context.Context, id string) (*models.Cluster, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, master_article_id, most_neutral_article_id,
			neutral_summary, bias_summary, analysis_complete, created_at
		FROM article_groups WHERE id = $1
	`, id)
	c, err := scanCluster(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get cluster: %w", err)
	}
	return c, nil
}

// ListClusterSourceIDs returns the distinct set of source ids already
// represented in a cluster — used to enforce I1 before attaching a
// candidate.
func (s *Store) ListClusterSourceIDs(ctx context.Context, clusterID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source_id FROM articles WHERE cluster_id = $1`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("store: list cluster source ids: %w", err)
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ClusterSize returns the current member count of a cluster.
func (s *Store) ClusterSize(ctx context.Context, clusterID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles WHERE cluster_id = $1`, clusterID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: cluster size: %w", err)
	}
	return n, nil
}

// TrendingClusters lists clusters ordered by coverage recency, with
// pagination and a minimum-coverage filter — the canonical trending
// endpoint resolved in §9's open question.
func (s *Store) TrendingClusters(ctx context.Context, offset, limit, minCoverage int) ([]models.Cluster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.display_name, g.master_article_id, g.most_neutral_article_id,
			g.neutral_summary, g.bias_summary, g.analysis_complete, g.created_at
		FROM article_groups g
		JOIN story_coverage c ON c.cluster_id = g.id
		WHERE c.coverage_score >= $3
		ORDER BY c.last_updated_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit, minCoverage)
	if err != nil {
		return nil, fmt.Errorf("store: trending clusters: %w", err)
	}
	defer rows.Close()
	return scanClusters(rows)
}

// AllClusterIDsWithSourceCounts lists cluster ids and each source's article
// count within them, for the cleanup pass's I1-violation scan.
func (s *Store) AllClusterIDsWithSourceCounts(ctx context.Context) (map[string]map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cluster_id, source_id, id FROM articles WHERE cluster_id IS NOT NULL ORDER BY cluster_id, source_id
	`)
	if err != nil {
		return nil, fmt.Errorf("store: cluster source counts: %w", err)
	}
	defer rows.Close()
	out := map[string]map[string][]string{}
	for rows.Next() {
		var clusterID, sourceID, articleID string
		if err := rows.Scan(&clusterID, &sourceID, &articleID); err != nil {
			return nil, err
		}
		if out[clusterID] == nil {
			out[clusterID] = map[string][]string{}
		}
		out[clusterID][sourceID] = append(out[clusterID][sourceID], articleID)
	}
	return out, rows.Err()
}

func scanClusters(rows *sql.Rows) ([]models.Cluster, error) {
	var out []models.Cluster
	for rows.Next() {
		var c models.Cluster
		var mostNeutral, neutralSummary, biasSummary sql.NullString
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.MasterArticleID, &mostNeutral,
			&neutralSummary, &biasSummary, &c.AnalysisComplete, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan cluster: %w", err)
		}
		applyClusterNullables(&c, mostNeutral, neutralSummary, biasSummary)
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCluster(row *sql.Row) (*models.Cluster, error) {
	var c models.Cluster
	var mostNeutral, neutralSummary, biasSummary sql.NullString
	if err := row.Scan(&c.ID, &c.DisplayName, &c.MasterArticleID, &mostNeutral,
		&neutralSummary, &biasSummary, &c.AnalysisComplete, &c.CreatedAt); err != nil {
		return nil, err
	}
	applyClusterNullables(&c, mostNeutral, neutralSummary, biasSummary)
	return &c, nil
}

func applyClusterNullables(c *models.Cluster, mostNeutral, neutralSummary, biasSummary sql.NullString) {
	if mostNeutral.Valid {
		v := mostNeutral.String
		c.MostNeutralArticle = &v
	}
	if neutralSummary.Valid {
		v := neutralSummary.String
		c.NeutralSummary = &v
	}
	if biasSummary.Valid {
		v := biasSummary.String
		c.BiasSummary = &v
	}
}

// WriteBiasAnalysisTx is the Bias Analyzer's cluster-level write-back: sets
// the neutral summary, most-neutral pick, and analysis-complete flag inside
// the caller's transaction (§4.6 step 3).
func WriteBiasAnalysisTx(ctx context.Context, tx *sql.Tx, clusterID string, neutralSummary, mostNeutralArticleID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE article_groups SET neutral_summary = $2, most_neutral_article_id = $3, analysis_complete = true
		WHERE id = $1
	`, clusterID, neutralSummary, mostNeutralArticleID)
	if err != nil {
		return fmt.Errorf("store: write bias analysis: %w", err)
	}
	return nil
}

// MarkAnalysisFailedTx records a failed bias analysis so the cluster is not
// retried in a tight loop (§4.6 step 4).
func MarkAnalysisFailedTx(ctx context.Context, tx *sql.Tx, clusterID, reason string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE article_groups SET analysis_complete = true, bias_summary = $2 WHERE id = $1
	`, clusterID, "Analysis failed: "+reason)
	if err != nil {
		return fmt.Errorf("store: mark analysis failed: %w", err)
	}
	return nil
}

// ResetAnalysisTx clears a cluster's analysis-complete flag for an
// operator-initiated retry sweep.
func ResetAnalysisTx(ctx context.Context, tx *sql.Tx, clusterID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE article_groups SET analysis_complete = false, bias_summary = NULL WHERE id = $1
	`, clusterID)
	if err != nil {
		return fmt.Errorf("store: reset analysis: %w", err)
	}
	return nil
}
