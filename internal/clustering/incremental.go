package clustering

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/embedding"
	"github.com/geraldfingburke/newsloom/internal/keyword"
	"github.com/geraldfingburke/newsloom/internal/models"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// ProcessIncremental runs the incremental-ingestion cascade for a single
// newly-inserted article against the recent window of articles from other
// sources (§4.5). It either attaches the article to an existing cluster,
// seeds a brand new one with its single best match, or leaves it
// unclustered for the next batch sweep — it never blocks the Feed Reader's
// insert path on an LLM round trip longer than one candidate.
func (e *Engine) ProcessIncremental(ctx context.Context, article models.Article) error {
	candidates, err := e.store.RecentArticlesFromOtherSources(ctx, article.SourceID, e.cfg.IncrementalWindow)
	if err != nil {
		return fmt.Errorf("clustering: incremental: loading recent articles: %w", err)
	}
	if len(candidates) == 0 {
		return nil
	}

	best, bestScore, ok := e.bestMatch(ctx, article, candidates)
	if !ok {
		return nil
	}

	if best.ClusterID != nil {
		return e.attachToExisting(ctx, article, *best.ClusterID)
	}

	log.Debug().Str("article", article.ID).Str("match", best.ID).Float64("score", bestScore).Msg("clustering: incremental seed match")
	return e.seedCluster(ctx, article, best)
}

// bestMatch screens candidates with the same semantic→embedding→LLM
// cascade used by the batch path, narrowed to the single candidate with
// the highest semantic score; the embedding and LLM (or fallback) stages
// only verify that one candidate, per §4.5's "evaluate against the single
// best candidate" incremental rule.
func (e *Engine) bestMatch(ctx context.Context, article models.Article, candidates []models.Article) (models.Article, float64, bool) {
	bag := keyword.Extract(article.Title, deref(article.Summary))

	var bestCand models.Article
	bestScore := -1.0
	for _, c := range candidates {
		if c.SourceID == article.SourceID { // I3
			continue
		}
		score := keyword.CompositeScore(bag, keyword.Extract(c.Title, deref(c.Summary)))
		if score > bestScore {
			bestScore = score
			bestCand = c
		}
	}
	if bestScore < e.cfg.SemanticThreshold {
		return models.Article{}, 0, false
	}

	if e.embedSvc != nil {
		v1 := e.embedSvc.Embed(ctx, article.Title, deref(article.Summary))
		v2 := e.embedSvc.Embed(ctx, bestCand.Title, deref(bestCand.Summary))
		if embedding.Cosine(v1, v2) < e.cfg.EmbeddingThreshold {
			return models.Article{}, 0, false
		}
	}

	if e.llm != nil {
		judgment, err := e.llm.JudgeSimilarity(ctx, article.Title, deref(article.Summary), bestCand.Title, deref(bestCand.Summary))
		if err != nil {
			log.Warn().Err(err).Str("article", article.ID).Msg("clustering: incremental LLM judgment failed, deferring to batch sweep")
			return models.Article{}, 0, false
		}
		if judgment.Similarity < e.cfg.LLMThreshold {
			return models.Article{}, 0, false
		}
	} else {
		fallback := keyword.FallbackScore(e.cfg.FallbackStrategy, article.Title, deref(article.Summary), bestCand.Title, deref(bestCand.Summary))
		if fallback < e.cfg.LLMThreshold {
			return models.Article{}, 0, false
		}
	}

	return bestCand, bestScore, true
}

func (e *Engine) attachToExisting(ctx context.Context, article models.Article, clusterID string) error {
	sourceIDs, err := e.store.ListClusterSourceIDs(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("clustering: incremental: listing cluster sources: %w", err)
	}
	if sourceIDs[article.SourceID] {
		return nil // I1: source already represented, skip silently
	}
	size, err := e.store.ClusterSize(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("clustering: incremental: cluster size: %w", err)
	}
	if size >= models.MaxClusterSize {
		return nil // I2
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("clustering: incremental: begin tx: %w", err)
	}
	if err := store.AttachToClusterTx(ctx, tx, article.ID, clusterID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clustering: incremental: attach: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clustering: incremental: commit attach: %w", err)
	}

	if e.analyzer != nil {
		if err := e.analyzer.AnalyzeCluster(ctx, clusterID); err != nil {
			log.Warn().Err(err).Str("cluster", clusterID).Msg("clustering: incremental re-analysis failed, will retry in sweep")
		}
	}
	return nil
}

func (e *Engine) seedCluster(ctx context.Context, article, match models.Article) error {
	members := []string{match.ID, article.ID}
	byID := map[string]models.Article{match.ID: match, article.ID: article}
	sortIDsByCreatedAtThenID(members, byID)

	cluster, err := e.persistCluster(ctx, members, byID)
	if err != nil {
		return err
	}
	if e.analyzer != nil {
		if err := e.analyzer.AnalyzeCluster(ctx, cluster.ID); err != nil {
			log.Warn().Err(err).Str("cluster", cluster.ID).Msg("clustering: incremental enrichment failed, will retry in sweep")
		}
	}
	return nil
}
