package bias

import (
	"testing"

	"github.com/geraldfingburke/newsloom/internal/llmclient"
	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestResolveMostNeutralPicksLowestScore(t *testing.T) {
	result := &llmclient.BiasAnalysisResult{
		Articles: []llmclient.BiasArticleResult{
			{ArticleID: "a", BiasScore: 0.8},
			{ArticleID: "b", BiasScore: 0.1},
			{ArticleID: "c", BiasScore: 0.5},
		},
	}
	got := resolveMostNeutral(result, nil)
	if got != "b" {
		t.Errorf("resolveMostNeutral() = %q, want %q", got, "b")
	}
}

func TestResolveMostNeutralTiesBreakOnSmallestID(t *testing.T) {
	result := &llmclient.BiasAnalysisResult{
		Articles: []llmclient.BiasArticleResult{
			{ArticleID: "zebra", BiasScore: 0.2},
			{ArticleID: "apple", BiasScore: 0.2},
		},
	}
	got := resolveMostNeutral(result, nil)
	if got != "apple" {
		t.Errorf("resolveMostNeutral() tie-break = %q, want %q", got, "apple")
	}
}

func TestResolveMostNeutralFallsBackWhenNoArticles(t *testing.T) {
	result := &llmclient.BiasAnalysisResult{MostUnbiasedArticleID: "fallback-id"}
	got := resolveMostNeutral(result, nil)
	if got != "fallback-id" {
		t.Errorf("resolveMostNeutral() = %q, want fallback id", got)
	}
}

func TestPoliticalLeaningFrom(t *testing.T) {
	tests := []struct {
		name string
		r    llmclient.BiasArticleResult
		want float64
	}{
		{"pure right", llmclient.BiasArticleResult{RightBias: 10, LeftBias: 0}, -1},
		{"pure left", llmclient.BiasArticleResult{RightBias: 0, LeftBias: 10}, 1},
		{"balanced", llmclient.BiasArticleResult{RightBias: 5, LeftBias: 5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := politicalLeaningFrom(tt.r); got != tt.want {
				t.Errorf("politicalLeaningFrom(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestSetBatchModeSwitchesInterval(t *testing.T) {
	a := New(nil, nil)
	if a.minInterval != SingleCallMinInterval {
		t.Fatalf("default minInterval = %v, want %v", a.minInterval, SingleCallMinInterval)
	}
	a.SetBatchMode(true)
	if a.minInterval != BatchCallMinInterval {
		t.Errorf("minInterval after SetBatchMode(true) = %v, want %v", a.minInterval, BatchCallMinInterval)
	}
	a.SetBatchMode(false)
	if a.minInterval != SingleCallMinInterval {
		t.Errorf("minInterval after SetBatchMode(false) = %v, want %v", a.minInterval, SingleCallMinInterval)
	}
}

func TestDeref(t *testing.T) {
	if got := deref(nil); got != "" {
		t.Errorf("deref(nil) = %q, want empty string", got)
	}
	s := "value"
	if got := deref(&s); got != "value" {
		t.Errorf("deref(&s) = %q, want %q", got, "value")
	}
}

func TestNewWithNilLLMLeavesClientNil(t *testing.T) {
	// AnalyzeCluster with a nil store would panic on ArticlesByCluster; this
	// case is covered at the integration level. Here we only confirm the
	// nil-llm short-circuit path is reachable without a provider configured.
	a := New(nil, nil)
	if a.llm != nil {
		t.Error("New(nil, nil) produced a non-nil llm client")
	}
}

func roundTripArticle(id string, score float64) llmclient.BiasArticleResult {
	return llmclient.BiasArticleResult{ArticleID: id, BiasScore: score}
}

func TestResolveMostNeutralSingleArticle(t *testing.T) {
	result := &llmclient.BiasAnalysisResult{Articles: []llmclient.BiasArticleResult{roundTripArticle("only", 0.4)}}
	if got := resolveMostNeutral(result, []models.Article{{ID: "only"}}); got != "only" {
		t.Errorf("resolveMostNeutral() = %q, want %q", got, "only")
	}
}
