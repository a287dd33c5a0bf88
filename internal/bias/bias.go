// Package bias is the Bias Analyzer (C7): for a cluster whose membership
// is settled, invokes the LLM Client's bias-analysis call once over every
// member, writes the per-article scores and the cluster's neutral summary
// and most-neutral pick back in a single transaction, and enforces the
// provider's rate limit.
//
// Grounded on the teacher's ai.go bias-analysis call (same "analyze the
// cluster, write back in one transaction" shape), generalized from its
// fixed two-source comparison to this package's N-member cluster.
package bias

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/llmclient"
	"github.com/geraldfingburke/newsloom/internal/models"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// SingleCallMinInterval and BatchCallMinInterval are the rate limits named
// in §4.6: at least 1s between individual analysis calls, at least 2s
// between calls issued from a batch sweep.
const (
	SingleCallMinInterval = 1 * time.Second
	BatchCallMinInterval  = 2 * time.Second
)

// Analyzer is the Bias Analyzer. It implements clustering.Analyzer without
// importing that package, avoiding a dependency cycle (clustering calls
// into bias, not the reverse).
type Analyzer struct {
	store       *store.Store
	llm         *llmclient.Client // nil when no provider is available
	minInterval time.Duration
	lastCallAt  time.Time
}

// New builds an Analyzer. llm may be nil (provider outage); AnalyzeCluster
// then marks the cluster it is given as failed rather than blocking (§4.6's
// "provider unavailable" path, §7).
func New(st *store.Store, llm *llmclient.Client) *Analyzer {
	return &Analyzer{store: st, llm: llm, minInterval: SingleCallMinInterval}
}

// SetBatchMode switches the rate limit to the wider batch-sweep interval;
// the "enrich"/"full" CLI commands call this before a sweep, single
// incremental-ingestion calls use the default.
func (a *Analyzer) SetBatchMode(batch bool) {
	if batch {
		a.minInterval = BatchCallMinInterval
		return
	}
	a.minInterval = SingleCallMinInterval
}

// AnalyzeCluster runs §4.6's four-step operation: load members, invoke the
// LLM Client, write back in one transaction, or, when the call fails,
// record the failure and mark the cluster's analysis complete so it is not
// picked up again. An error returned from loading or writing leaves the
// cluster pending.
func (a *Analyzer) AnalyzeCluster(ctx context.Context, clusterID string) error {
	a.throttle()

	members, err := a.store.ArticlesByCluster(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("bias: loading cluster members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}

	if a.llm == nil {
		return a.recordFailure(ctx, clusterID, "no LLM provider available")
	}

	input, err := a.buildInput(ctx, members)
	if err != nil {
		return fmt.Errorf("bias: building prompt input: %w", err)
	}

	started := time.Now()
	result, err := a.llm.AnalyzeBias(ctx, input)
	duration := time.Since(started)
	a.recordJob(ctx, clusterID, err, duration)
	if err != nil {
		log.Warn().Err(err).Str("cluster", clusterID).Msg("bias: analysis call failed")
		return a.recordFailure(ctx, clusterID, err.Error())
	}

	mostNeutral := resolveMostNeutral(result, members)
	return a.writeBack(ctx, clusterID, result, mostNeutral)
}

func (a *Analyzer) throttle() {
	if a.lastCallAt.IsZero() {
		a.lastCallAt = time.Now()
		return
	}
	elapsed := time.Since(a.lastCallAt)
	if elapsed < a.minInterval {
		time.Sleep(a.minInterval - elapsed)
	}
	a.lastCallAt = time.Now()
}

func (a *Analyzer) buildInput(ctx context.Context, members []models.Article) ([]llmclient.BiasInputArticle, error) {
	sourceCache := map[string]models.Source{}
	input := make([]llmclient.BiasInputArticle, 0, len(members))
	for _, m := range members {
		src, ok := sourceCache[m.SourceID]
		if !ok {
			s, err := a.store.GetSource(ctx, m.SourceID)
			if err != nil {
				return nil, fmt.Errorf("loading source %s: %w", m.SourceID, err)
			}
			src = *s
			sourceCache[m.SourceID] = src
		}
		input = append(input, llmclient.BiasInputArticle{
			ID:         m.ID,
			Title:      m.Title,
			Summary:    deref(m.Summary),
			SourceName: src.Name,
			SourceBias: src.Bias,
		})
	}
	return input, nil
}

// resolveMostNeutral enforces §4.6's determinism rule: when the model's
// scores tie for lowest bias, the smallest article id wins, never the
// model's arbitrary pick among ties.
func resolveMostNeutral(result *llmclient.BiasAnalysisResult, members []models.Article) string {
	if len(result.Articles) == 0 {
		return result.MostUnbiasedArticleID
	}
	sorted := append([]llmclient.BiasArticleResult(nil), result.Articles...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].BiasScore != sorted[j].BiasScore {
			return sorted[i].BiasScore < sorted[j].BiasScore
		}
		return sorted[i].ArticleID < sorted[j].ArticleID
	})
	return sorted[0].ArticleID
}

func (a *Analyzer) writeBack(ctx context.Context, clusterID string, result *llmclient.BiasAnalysisResult, mostNeutral string) error {
	tx, err := a.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("bias: begin tx: %w", err)
	}
	for _, r := range result.Articles {
		leaning := models.ClampPoliticalLeaning(politicalLeaningFrom(r))
		sensationalism := models.ClampSensationalism(r.Sensationalism / 10)
		if err := store.WriteBiasFieldsTx(ctx, tx, r.ArticleID, leaning, sensationalism, r.Reasoning); err != nil {
			tx.Rollback()
			return fmt.Errorf("bias: write article fields: %w", err)
		}
	}
	if err := store.WriteBiasAnalysisTx(ctx, tx, clusterID, result.NeutralSummary, mostNeutral); err != nil {
		tx.Rollback()
		return fmt.Errorf("bias: write cluster analysis: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bias: commit: %w", err)
	}
	for _, r := range result.Articles {
		if err := a.store.Index().Refresh(ctx, r.ArticleID); err != nil {
			log.Warn().Err(err).Str("article", r.ArticleID).Msg("bias: search index refresh failed")
		}
	}
	return nil
}

// politicalLeaningFrom maps the model's 0-10 left/right scores to the
// -1..1 scale the store persists: positive leans left, negative leans
// right, magnitude proportional to the difference of the two, per §4.6's
// political_leaning = (leftBias - rightBias) / 10.
func politicalLeaningFrom(r llmclient.BiasArticleResult) float64 {
	return (r.LeftBias - r.RightBias) / 10
}

func (a *Analyzer) recordFailure(ctx context.Context, clusterID, reason string) error {
	tx, err := a.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("bias: begin failure tx: %w", err)
	}
	if err := store.MarkAnalysisFailedTx(ctx, tx, clusterID, reason); err != nil {
		tx.Rollback()
		return fmt.Errorf("bias: mark failed: %w", err)
	}
	return tx.Commit()
}

func (a *Analyzer) recordJob(ctx context.Context, clusterID string, callErr error, duration time.Duration) {
	job := &models.AIAnalysisJob{
		ID:         newJobID(),
		Kind:       models.JobKindBiasAnalysis,
		ClusterID:  &clusterID,
		Succeeded:  callErr == nil,
		DurationMS: int(duration.Milliseconds()),
	}
	if callErr != nil {
		msg := callErr.Error()
		job.Error = &msg
	}
	if err := a.store.RecordJob(ctx, job); err != nil {
		log.Warn().Err(err).Msg("bias: recording job audit failed")
	}
}

func newJobID() string { return uuid.NewString() }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
