// Package clustering is the Clustering Engine (C6): given the set of
// not-yet-clustered articles, forms clusters subject to invariants I1-I4
// via a three-stage similarity cascade (keywords, embeddings, LLM
// verification), then assembles, enriches, and periodically cleans up
// cluster membership.
//
// Structure is grounded on other_examples' TelegramDigestBot clustering
// pass (clusterBuildContext, findClusterItems/shouldAddToCluster/
// validateClusterCandidate, limitClusterItems's warn-on-truncation,
// calculateBoostedSimilarity), adapted from that file's single embedding
// pass into this repository's three explicit cascade stages plus I1-I4
// enforcement, which that source file does not need to the same degree
// (it clusters within one Telegram channel, not across competing sources).
//
// Ordering note: "ascending article id order" in the distilled spec
// assumes sequential integer ids. This repository's ids are UUIDs (see
// internal/models), so ascending-id tie-breaking is realized as ascending
// (CreatedAt, ID) — CreatedAt already reflects insertion order, and ID
// only breaks a tie within the same instant. This is recorded as a
// decided Open Question in DESIGN.md.
package clustering

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/embedding"
	"github.com/geraldfingburke/newsloom/internal/llmclient"
	"github.com/geraldfingburke/newsloom/internal/models"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// Analyzer is the narrow interface the Clustering Engine needs from the
// Bias Analyzer for "immediate enrichment" (§4.5) — kept narrow to avoid a
// dependency cycle between the two packages.
type Analyzer interface {
	AnalyzeCluster(ctx context.Context, clusterID string) error
}

// Config holds every tunable named in §4.3-§4.5, including the two Open
// Questions resolved as config knobs per §9.
type Config struct {
	MaxTotalArticles   int // -1 = unlimited
	MaxPerSource       int // default 50
	TopMCandidates     int // M, default 10
	SemanticThreshold  float64
	EmbeddingThreshold float64
	LLMThreshold       float64
	IncrementalWindow  time.Duration // H hours, default 24, at most 48
	FallbackStrategy   string        // "title-jaccard" | "weighted"
}

// DefaultConfig matches every default named in §4.3-§4.5.
func DefaultConfig() Config {
	return Config{
		MaxTotalArticles:   -1,
		MaxPerSource:       50,
		TopMCandidates:     10,
		SemanticThreshold:  0.3,
		EmbeddingThreshold: embedding.DefaultEmbeddingThreshold,
		LLMThreshold:       0.75,
		IncrementalWindow:  24 * time.Hour,
		FallbackStrategy:   "weighted",
	}
}

// Engine is the Clustering Engine.
type Engine struct {
	store    *store.Store
	llm      *llmclient.Client // nil when no provider is available
	embedSvc *embedding.Service
	analyzer Analyzer
	cfg      Config
}

// New builds an Engine. llm and embedSvc may be nil (provider outage,
// §7's "Provider unavailable" path) — with no llm, the third stage uses
// the keyword fallback similarity (cfg.FallbackStrategy) against
// LLMThreshold in place of the LLM judgment.
func New(st *store.Store, llm *llmclient.Client, embedSvc *embedding.Service, analyzer Analyzer, cfg Config) *Engine {
	return &Engine{store: st, llm: llm, embedSvc: embedSvc, analyzer: analyzer, cfg: cfg}
}

// RunBatch runs the full batch cascade + assembly over all currently
// unclustered articles, analyses each new cluster as it is created, then
// sweeps every cluster still pending analysis through the Bias Analyzer.
// Cleanup is a separate Cleanup call. This is the Scheduler's T_enrich
// batch path and the batch phase of the "enrich" / "full" CLI commands.
func (e *Engine) RunBatch(ctx context.Context) error {
	articles, err := e.store.UnclusteredArticles(ctx, e.cfg.MaxTotalArticles, e.cfg.MaxPerSource)
	if err != nil {
		return fmt.Errorf("clustering: loading unclustered articles: %w", err)
	}
	orderArticles(articles)

	pairs := e.cascade(ctx, articles)
	clusters, err := e.assemble(ctx, articles, pairs)
	if err != nil {
		return fmt.Errorf("clustering: assembly: %w", err)
	}

	for _, c := range clusters {
		if e.analyzer == nil {
			continue
		}
		if err := e.analyzer.AnalyzeCluster(ctx, c.ID); err != nil {
			log.Warn().Err(err).Str("cluster", c.ID).Msg("clustering: immediate enrichment failed, will retry in sweep")
		}
	}

	if e.analyzer == nil {
		return nil
	}
	pending, err := e.store.PendingBiasClusters(ctx)
	if err != nil {
		return fmt.Errorf("clustering: loading pending clusters: %w", err)
	}
	for _, c := range pending {
		if err := e.analyzer.AnalyzeCluster(ctx, c.ID); err != nil {
			log.Warn().Err(err).Str("cluster", c.ID).Msg("clustering: pending-cluster analysis failed, will retry in sweep")
		}
	}
	return nil
}

// orderArticles fixes the deterministic processing order every stage
// relies on (§5's ordering guarantee).
func orderArticles(articles []models.Article) {
	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].CreatedAt.Equal(articles[j].CreatedAt) {
			return articles[i].CreatedAt.Before(articles[j].CreatedAt)
		}
		return articles[i].ID < articles[j].ID
	})
}

func newClusterID() string { return uuid.NewString() }
