package clustering

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/embedding"
	"github.com/geraldfingburke/newsloom/internal/keyword"
	"github.com/geraldfingburke/newsloom/internal/models"
)

// pairKey identifies an unordered candidate pair by the two article ids,
// lower id first (after orderArticles's (CreatedAt, ID) ordering is
// applied to the inputs).
type pairKey struct {
	a, b string
}

// cascade runs the three-stage pipeline (§4.5): semantic preprocessing,
// embedding verification, LLM verification. Each stage prunes the
// candidate set carried to the next. Returns the pairs that survived every
// available stage.
func (e *Engine) cascade(ctx context.Context, articles []models.Article) []pairKey {
	bags := make(map[string]keyword.Bags, len(articles))
	for _, a := range articles {
		bags[a.ID] = keyword.Extract(a.Title, deref(a.Summary))
	}

	stage1 := e.semanticStage(articles, bags)
	log.Debug().Int("pairs", len(stage1)).Msg("clustering: stage 1 (semantic) candidates")

	stage2 := e.embeddingStage(ctx, articles, stage1)
	log.Debug().Int("pairs", len(stage2)).Msg("clustering: stage 2 (embedding) candidates")

	if e.llm == nil {
		log.Warn().Msg("clustering: no LLM provider available, applying fallback similarity formula instead of stage 3")
		fallback := e.fallbackStage(articles, stage2)
		log.Debug().Int("pairs", len(fallback)).Msg("clustering: fallback-stage candidates")
		return fallback
	}
	stage3 := e.llmStage(ctx, articles, stage2)
	log.Debug().Int("pairs", len(stage3)).Msg("clustering: stage 3 (LLM) candidates")
	return stage3
}

// semanticStage is stage 1: keyword composite score, top-M candidates per
// article, subject to I3 (cross-source only).
type scoredCandidate struct {
	other string
	score float64
}

func (e *Engine) semanticStage(articles []models.Article, bags map[string]keyword.Bags) []pairKey {
	candidates := map[string][]scoredCandidate{}

	for i := range articles {
		for j := i + 1; j < len(articles); j++ {
			a, b := articles[i], articles[j]
			if a.SourceID == b.SourceID { // I3: never compare same-source articles
				continue
			}
			score := keyword.CompositeScore(bags[a.ID], bags[b.ID])
			if score < e.cfg.SemanticThreshold {
				continue
			}
			candidates[a.ID] = append(candidates[a.ID], scoredCandidate{b.ID, score})
			candidates[b.ID] = append(candidates[b.ID], scoredCandidate{a.ID, score})
		}
	}

	seen := map[pairKey]bool{}
	var out []pairKey
	for id, cands := range candidates {
		sortScoredDesc(cands)
		limit := e.cfg.TopMCandidates
		if limit > len(cands) {
			limit = len(cands)
		}
		for _, c := range cands[:limit] {
			k := orderedPair(id, c.other)
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

func sortScoredDesc(s []scoredCandidate) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].score > s[j-1].score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func orderedPair(a, b string) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// embeddingStage is stage 2: cosine similarity of title+summary embeddings.
func (e *Engine) embeddingStage(ctx context.Context, articles []models.Article, pairs []pairKey) []pairKey {
	if e.embedSvc == nil {
		return pairs
	}
	byID := articlesByID(articles)
	vecCache := map[string][]float64{}
	getVec := func(id string) []float64 {
		if v, ok := vecCache[id]; ok {
			return v
		}
		a := byID[id]
		v := e.embedSvc.Embed(ctx, a.Title, deref(a.Summary))
		vecCache[id] = v
		return v
	}

	var out []pairKey
	for _, p := range pairs {
		sim := embedding.Cosine(getVec(p.a), getVec(p.b))
		if sim >= e.cfg.EmbeddingThreshold {
			out = append(out, p)
		}
	}
	return out
}

// llmStage is stage 3: LLM similarity judgment over the remaining pairs.
// Errors degrade to "no match" for that pair, never to a false positive
// (§4.5's failure semantics).
func (e *Engine) llmStage(ctx context.Context, articles []models.Article, pairs []pairKey) []pairKey {
	byID := articlesByID(articles)
	var out []pairKey
	for _, p := range pairs {
		a, b := byID[p.a], byID[p.b]
		judgment, err := e.llm.JudgeSimilarity(ctx, a.Title, deref(a.Summary), b.Title, deref(b.Summary))
		if err != nil {
			log.Warn().Err(err).Str("a", p.a).Str("b", p.b).Msg("clustering: LLM similarity judgment failed, treating as no match")
			continue
		}
		if judgment.Similarity >= e.cfg.LLMThreshold {
			out = append(out, p)
		}
	}
	return out
}

// fallbackStage substitutes for stage 3 when no LLM provider is available
// (§9's decided Open Question): scores each surviving pair with the
// configured FallbackStrategy ("title-jaccard" or "weighted") against the
// same LLMThreshold the real stage 3 would have applied.
func (e *Engine) fallbackStage(articles []models.Article, pairs []pairKey) []pairKey {
	byID := articlesByID(articles)
	var out []pairKey
	for _, p := range pairs {
		a, b := byID[p.a], byID[p.b]
		score := keyword.FallbackScore(e.cfg.FallbackStrategy, a.Title, deref(a.Summary), b.Title, deref(b.Summary))
		if score >= e.cfg.LLMThreshold {
			out = append(out, p)
		}
	}
	return out
}

func articlesByID(articles []models.Article) map[string]models.Article {
	m := make(map[string]models.Article, len(articles))
	for _, a := range articles {
		m[a.ID] = a
	}
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
