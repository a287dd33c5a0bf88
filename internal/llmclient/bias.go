package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geraldfingburke/newsloom/internal/models"
)

// BiasInputArticle is one cluster member passed to the bias-analysis call.
type BiasInputArticle struct {
	ID         string
	Title      string
	Summary    string
	SourceName string
	SourceBias models.BiasLabel
}

// BiasArticleResult is one article's normalized per-article bias output.
type BiasArticleResult struct {
	ArticleID      string
	BiasScore      float64 // 0-10, raw from the model
	LeftBias       float64 // 0-10
	RightBias      float64 // 0-10
	Sensationalism float64 // 0-10
	Reasoning      string
}

// BiasAnalysisResult is the normalized output of the bias-analysis call
// (§4.2's output JSON shape, after clamping and gap-filling).
type BiasAnalysisResult struct {
	MostUnbiasedArticleID string
	NeutralSummary        string
	Articles              []BiasArticleResult
}

type biasAnalysisRawArticle struct {
	ArticleID      string  `json:"articleId"`
	BiasScore      float64 `json:"biasScore"`
	LeftBias       float64 `json:"leftBias"`
	RightBias      float64 `json:"rightBias"`
	Sensationalism float64 `json:"sensationalism"`
	Reasoning      string  `json:"reasoning"`
}

type biasAnalysisRawResponse struct {
	MostUnbiasedArticleID string                    `json:"mostUnbiasedArticleId"`
	NeutralSummary        string                    `json:"neutralSummary"`
	Articles              []biasAnalysisRawArticle  `json:"articles"`
}

// AnalyzeBias invokes the bias-analysis prompt over a cluster's member
// articles (§4.2) and normalizes the result: clamps every score to its
// range and synthesizes an entry for any article the model omitted.
func (c *Client) AnalyzeBias(ctx context.Context, articles []BiasInputArticle) (*BiasAnalysisResult, error) {
	prompt := buildBiasPrompt(articles)
	raw, err := c.callWithRetry(ctx, biasSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	jsonStr := extractBalancedJSON(raw)
	if jsonStr == "" {
		return nil, ErrResponseUnparseable
	}

	var parsed biasAnalysisRawResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseUnparseable, err)
	}

	return normalizeBiasResult(articles, parsed), nil
}

const biasSystemPrompt = "You are a neutral media analyst. Respond only with a single JSON object, no surrounding prose."

func buildBiasPrompt(articles []BiasInputArticle) string {
	var b strings.Builder
	b.WriteString("Analyze the following articles, all reporting on the same event from different outlets. ")
	b.WriteString("For each article, score biasScore (0=unbiased, 10=extremely biased), leftBias (0-10), ")
	b.WriteString("rightBias (0-10), sensationalism (0-10), and give one-sentence reasoning. ")
	b.WriteString("Then identify the single most unbiased article by id and write one neutral, factual summary ")
	b.WriteString("of the event that draws on all articles.\n\n")
	b.WriteString("Respond with JSON: {\"mostUnbiasedArticleId\": string, \"neutralSummary\": string, ")
	b.WriteString("\"articles\": [{\"articleId\": string, \"biasScore\": number, \"leftBias\": number, ")
	b.WriteString("\"rightBias\": number, \"sensationalism\": number, \"reasoning\": string}]}\n\n")
	b.WriteString("Articles:\n")
	for _, a := range articles {
		fmt.Fprintf(&b, "- id=%s source=%q (bias=%s) title=%q summary=%q\n",
			a.ID, a.SourceName, a.SourceBias, a.Title, a.Summary)
	}
	return b.String()
}

func normalizeBiasResult(input []BiasInputArticle, parsed biasAnalysisRawResponse) *BiasAnalysisResult {
	byID := map[string]biasAnalysisRawArticle{}
	for _, a := range parsed.Articles {
		byID[a.ArticleID] = a
	}

	out := &BiasAnalysisResult{
		MostUnbiasedArticleID: parsed.MostUnbiasedArticleID,
		NeutralSummary:        parsed.NeutralSummary,
	}
	for _, in := range input {
		raw, ok := byID[in.ID]
		if !ok {
			out.Articles = append(out.Articles, BiasArticleResult{
				ArticleID: in.ID,
				BiasScore: 5,
				Reasoning: "not analysed",
			})
			continue
		}
		out.Articles = append(out.Articles, BiasArticleResult{
			ArticleID:      in.ID,
			BiasScore:      clamp10(raw.BiasScore),
			LeftBias:       clamp10(raw.LeftBias),
			RightBias:      clamp10(raw.RightBias),
			Sensationalism: clamp10(raw.Sensationalism),
			Reasoning:      raw.Reasoning,
		})
	}
	if out.MostUnbiasedArticleID == "" && len(out.Articles) > 0 {
		out.MostUnbiasedArticleID = argmaxBiasScore(out.Articles)
	}
	return out
}

// argmaxBiasScore breaks ties by smallest article id is handled by the
// caller (Bias Analyzer owns determinism, §4.6) — this is only a fallback
// for when the model omits mostUnbiasedArticleId outright.
func argmaxBiasScore(articles []BiasArticleResult) string {
	best := articles[0]
	for _, a := range articles[1:] {
		if a.BiasScore > best.BiasScore {
			best = a
		}
	}
	return best.ArticleID
}

func clamp10(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
