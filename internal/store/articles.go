package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// ArticleExistsByLink implements I6's dedupe key: the canonical link.
func (s *Store) ArticleExistsByLink(ctx context.Context, link string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE canonical_link = $1)`, link).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: article exists by link: %w", err)
	}
	return exists, nil
}

// InsertArticleTx inserts a new article row inside the caller's transaction.
// The Feed Reader commits each insert in its own transaction; the source's
// last-fetch timestamp is updated separately by TouchSourceFetchedAt, outside
// any transaction, after all of the source's entries are processed.
func InsertArticleTx(ctx context.Context, tx *sql.Tx, a *models.Article) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO articles (
			id, source_id, title, canonical_link, summary, published_at,
			image_url, bias, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (canonical_link) DO NOTHING
	`, a.ID, a.SourceID, a.Title, a.CanonicalLink, a.Summary, a.PublishedAt, a.ImageURL, string(a.Bias))
	if err != nil {
		return fmt.Errorf("store: insert article: %w", err)
	}
	return nil
}

// BeginTx starts a transaction; a thin alias kept so callers outside this
// package never import database/sql merely to spell out *sql.Tx.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// UnclusteredArticles returns articles with no cluster assignment whose
// summary is long enough to enter the cascade (boundary behaviour: < 20
// chars never considered), bounded per-source and in total per §4.5.
func (s *Store) UnclusteredArticles(ctx context.Context, maxTotal, maxPerSource int) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, cluster_id, title, canonical_link, summary, published_at,
			image_url, bias, indexed, bias_analyzed, political_leaning, sensationalism,
			framing_note, created_at
		FROM articles
		WHERE cluster_id IS NULL AND summary IS NOT NULL AND length(summary) >= $1
		ORDER BY id
	`, models.MinClusterableSummaryLen)
	if err != nil {
		return nil, fmt.Errorf("store: unclustered articles: %w", err)
	}
	defer rows.Close()

	all, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}
	return boundArticlesPerSource(all, maxTotal, maxPerSource), nil
}

// RecentArticlesFromOtherSources returns known-bias articles published
// within the last `within` window excluding the given source, for the
// incremental-ingestion cascade (§4.5).
func (s *Store) RecentArticlesFromOtherSources(ctx context.Context, excludeSourceID string, within time.Duration) ([]models.Article, error) {
	cutoff := time.Now().Add(-within)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, cluster_id, title, canonical_link, summary, published_at,
			image_url, bias, indexed, bias_analyzed, political_leaning, sensationalism,
			framing_note, created_at
		FROM articles
		WHERE source_id != $1 AND published_at >= $2
			AND summary IS NOT NULL AND length(summary) >= $3
		ORDER BY id
	`, excludeSourceID, cutoff, models.MinClusterableSummaryLen)
	if err != nil {
		return nil, fmt.Errorf("store: recent articles from other sources: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// ArticlesByCluster returns every member of a cluster, ordered by
// published-descending per §5's display-order guarantee.
func (s *Store) ArticlesByCluster(ctx context.Context, clusterID string) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, cluster_id, title, canonical_link, summary, published_at,
			image_url, bias, indexed, bias_analyzed, political_leaning, sensationalism,
			framing_note, created_at
		FROM articles WHERE cluster_id = $1 ORDER BY published_at DESC
	`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("store: articles by cluster: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// GetArticle fetches a single article by id.
func (s *Store) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, cluster_id, title, canonical_link, summary, published_at,
			image_url, bias, indexed, bias_analyzed, political_leaning, sensationalism,
			framing_note, created_at
		FROM articles WHERE id = $1
	`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get article: %w", err)
	}
	return a, nil
}

// AssignClusterTx sets an article's cluster id inside the caller's
// transaction. Invoked only by the Clustering Engine per the ownership
// rule in §3.
func AssignClusterTx(ctx context.Context, tx *sql.Tx, articleID, clusterID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE articles SET cluster_id = $2 WHERE id = $1`, articleID, clusterID)
	if err != nil {
		return fmt.Errorf("store: assign cluster: %w", err)
	}
	return nil
}

// UngroupArticleTx clears an article's cluster id (cleanup pass, or a
// dissolved cluster).
func UngroupArticleTx(ctx context.Context, tx *sql.Tx, articleID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE articles SET cluster_id = NULL WHERE id = $1`, articleID)
	if err != nil {
		return fmt.Errorf("store: ungroup article: %w", err)
	}
	return nil
}

// WriteBiasFieldsTx writes the Bias Analyzer's per-article output inside
// the caller's transaction — the only writer of these fields per §3.
func WriteBiasFieldsTx(ctx context.Context, tx *sql.Tx, articleID string, politicalLeaning, sensationalism float64, framingNote string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE articles SET political_leaning = $2, sensationalism = $3, framing_note = $4, bias_analyzed = true
		WHERE id = $1
	`, articleID, politicalLeaning, sensationalism, framingNote)
	if err != nil {
		return fmt.Errorf("store: write bias fields: %w", err)
	}
	return nil
}

// PendingBiasClusters returns clusters with analysis_complete = false, for
// the Bias Analyzer's sweep.
func (s *Store) PendingBiasClusters(ctx context.Context) ([]models.Cluster, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, master_article_id, most_neutral_article_id,
			neutral_summary, bias_summary, analysis_complete, created_at
		FROM article_groups WHERE analysis_complete = false ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("store: pending bias clusters: %w", err)
	}
	defer rows.Close()
	return scanClusters(rows)
}

// ArticlesByIDs hydrates full article rows for a set of ids returned by
// the full-text index, preserving the caller's ordering.
func (s *Store) ArticlesByIDs(ctx context.Context, ids []string) ([]models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, cluster_id, title, canonical_link, summary, published_at,
			image_url, bias, indexed, bias_analyzed, political_leaning, sensationalism,
			framing_note, created_at
		FROM articles WHERE id = ANY($1)
	`, models.StringArray(ids))
	if err != nil {
		return nil, fmt.Errorf("store: articles by ids: %w", err)
	}
	defer rows.Close()
	byID := map[string]models.Article{}
	all, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range all {
		byID[a.ID] = a
	}
	out := make([]models.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func scanArticles(rows *sql.Rows) ([]models.Article, error) {
	var out []models.Article
	for rows.Next() {
		var a models.Article
		var clusterID, summary, framingNote sql.NullString
		var bias string
		var politicalLeaning, sensationalism sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.SourceID, &clusterID, &a.Title, &a.CanonicalLink, &summary,
			&a.PublishedAt, &a.ImageURL, &bias, &a.Indexed, &a.BiasAnalyzed,
			&politicalLeaning, &sensationalism, &framingNote, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan article: %w", err)
		}
		applyArticleNullables(&a, clusterID, summary, framingNote, bias, politicalLeaning, sensationalism)
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanArticle(row *sql.Row) (*models.Article, error) {
	var a models.Article
	var clusterID, summary, framingNote sql.NullString
	var bias string
	var politicalLeaning, sensationalism sql.NullFloat64
	if err := row.Scan(&a.ID, &a.SourceID, &clusterID, &a.Title, &a.CanonicalLink, &summary,
		&a.PublishedAt, &a.ImageURL, &bias, &a.Indexed, &a.BiasAnalyzed,
		&politicalLeaning, &sensationalism, &framingNote, &a.CreatedAt); err != nil {
		return nil, err
	}
	applyArticleNullables(&a, clusterID, summary, framingNote, bias, politicalLeaning, sensationalism)
	return &a, nil
}

func applyArticleNullables(a *models.Article, clusterID, summary, framingNote sql.NullString, bias string, politicalLeaning, sensationalism sql.NullFloat64) {
	a.Bias = models.BiasLabel(bias)
	if clusterID.Valid {
		v := clusterID.String
		a.ClusterID = &v
	}
	if summary.Valid {
		v := summary.String
		a.Summary = &v
	}
	if framingNote.Valid {
		v := framingNote.String
		a.FramingNote = &v
	}
	if politicalLeaning.Valid {
		v := politicalLeaning.Float64
		a.PoliticalLeaning = &v
	}
	if sensationalism.Valid {
		v := sensationalism.Float64
		a.Sensationalism = &v
	}
}

// boundArticlesPerSource enforces the sampling bounds from §4.5: at most
// maxTotal articles (maxTotal < 0 = unlimited), at most maxPerSource per
// source, preserving ascending-id order.
func boundArticlesPerSource(all []models.Article, maxTotal, maxPerSource int) []models.Article {
	perSource := map[string]int{}
	var out []models.Article
	for _, a := range all {
		if maxPerSource > 0 && perSource[a.SourceID] >= maxPerSource {
			continue
		}
		if maxTotal >= 0 && len(out) >= maxTotal {
			break
		}
		perSource[a.SourceID]++
		out = append(out, a)
	}
	return out
}
