package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
)

// SimilarityJudgment is the normalized output of the similarity judgment
// call (§4.2).
type SimilarityJudgment struct {
	Similarity float64 `json:"similarity"`
	IsMatch    bool    `json:"isMatch"`
	Reasoning  string  `json:"reasoning"`
}

const similaritySystemPrompt = "You judge whether two news articles describe the same real-world event. Respond only with a single JSON object."

// JudgeSimilarity is the clustering cascade's third stage (§4.5): asks
// whether two articles describe the same event. Callers must already have
// enforced I3 (different source ids) before invoking this — the boundary
// behaviour "a pair with equal source ids is never judged by the LLM"
// belongs to the Clustering Engine, not this client.
func (c *Client) JudgeSimilarity(ctx context.Context, titleA, summaryA, titleB, summaryB string) (*SimilarityJudgment, error) {
	prompt := fmt.Sprintf(
		"Article A: %q — %q\nArticle B: %q — %q\n\n"+
			"Do these describe the same real-world event? Respond with JSON: "+
			"{\"similarity\": number between 0 and 1, \"isMatch\": boolean, \"reasoning\": string}.",
		titleA, summaryA, titleB, summaryB,
	)
	raw, err := c.callWithRetry(ctx, similaritySystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	jsonStr := extractBalancedJSON(raw)
	if jsonStr == "" {
		return nil, ErrResponseUnparseable
	}

	var out SimilarityJudgment
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseUnparseable, err)
	}
	if out.Similarity < 0 {
		out.Similarity = 0
	}
	if out.Similarity > 1 {
		out.Similarity = 1
	}
	return &out, nil
}
