// Package embedding is the Embedding Service (C5): maps article text to a
// vector via the LLM Client's local provider, and computes cosine
// similarity. Cosine similarity over []float64 is arithmetic, not a
// library concern, and no vector-math library appears anywhere in the
// reference pack, so this stays on stdlib math — justified per DESIGN.md.
package embedding

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/llmclient"
)

// Service wraps an llmclient.Client for the single operation the
// Clustering Engine needs.
type Service struct {
	client *llmclient.Client
}

// New builds an embedding Service over an already-selected LLM Client.
func New(client *llmclient.Client) *Service {
	return &Service{client: client}
}

// Embed maps "title + summary" to a vector. On any failure it logs and
// returns an empty vector rather than an error — callers must treat an
// empty vector as "no signal" (§4.4).
func (s *Service) Embed(ctx context.Context, title, summary string) []float64 {
	vec, err := s.client.Embed(ctx, title+" "+summary)
	if err != nil {
		log.Warn().Err(err).Msg("embedding: provider call failed, returning empty vector")
		return nil
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors. Mismatched
// dimensions or an empty vector on either side returns 0 (§4.4).
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// DefaultEmbeddingThreshold (τ_emb, non-strict mode) per §4.5.
const DefaultEmbeddingThreshold = 0.55

// StrictEmbeddingThreshold (τ_emb, strict mode) per §4.5.
const StrictEmbeddingThreshold = 0.70
