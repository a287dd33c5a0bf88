package clustering

import (
	"testing"

	"github.com/geraldfingburke/newsloom/internal/keyword"
	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestOrderedPairIsCanonical(t *testing.T) {
	if got := orderedPair("b", "a"); got != (pairKey{"a", "b"}) {
		t.Errorf("orderedPair(b, a) = %v, want {a b}", got)
	}
	if got := orderedPair("a", "b"); got != (pairKey{"a", "b"}) {
		t.Errorf("orderedPair(a, b) = %v, want {a b}", got)
	}
}

func TestSortScoredDescOrdersHighestFirst(t *testing.T) {
	s := []scoredCandidate{{"x", 0.2}, {"y", 0.9}, {"z", 0.5}}
	sortScoredDesc(s)

	if s[0].other != "y" || s[1].other != "z" || s[2].other != "x" {
		t.Errorf("sortScoredDesc produced %v, want descending by score", s)
	}
}

func TestSemanticStageSkipsSameSourcePairs(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.SemanticThreshold = 0

	articles := []models.Article{
		{ID: "a1", SourceID: "src1", Title: "Senate passes new legislation", Summary: strPtr("lawmakers voted")},
		{ID: "a2", SourceID: "src1", Title: "Senate passes new legislation", Summary: strPtr("lawmakers voted")},
	}
	bags := map[string]keyword.Bags{
		"a1": keyword.Extract(articles[0].Title, *articles[0].Summary),
		"a2": keyword.Extract(articles[1].Title, *articles[1].Summary),
	}

	pairs := e.semanticStage(articles, bags)

	if len(pairs) != 0 {
		t.Errorf("semanticStage produced %v for a same-source pair, want none (I3)", pairs)
	}
}

func TestSemanticStageAdmitsCrossSourceMatch(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.SemanticThreshold = 0
	e.cfg.TopMCandidates = 10

	articles := []models.Article{
		{ID: "a1", SourceID: "src1", Title: "Senate passes new legislation", Summary: strPtr("lawmakers voted on the bill today")},
		{ID: "a2", SourceID: "src2", Title: "Senate passes new legislation", Summary: strPtr("lawmakers voted on the bill today")},
	}
	bags := map[string]keyword.Bags{
		"a1": keyword.Extract(articles[0].Title, *articles[0].Summary),
		"a2": keyword.Extract(articles[1].Title, *articles[1].Summary),
	}

	pairs := e.semanticStage(articles, bags)

	if len(pairs) != 1 {
		t.Fatalf("semanticStage produced %v, want exactly one cross-source pair", pairs)
	}
	if pairs[0] != orderedPair("a1", "a2") {
		t.Errorf("semanticStage pair = %v, want {a1 a2}", pairs[0])
	}
}

func TestFallbackStageAppliesWeightedStrategy(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.FallbackStrategy = "weighted"
	e.cfg.LLMThreshold = 0.5

	articles := []models.Article{
		{ID: "a1", SourceID: "src1", Title: "Senate passes bill", Summary: strPtr("lawmakers voted today")},
		{ID: "a2", SourceID: "src2", Title: "Senate passes bill", Summary: strPtr("lawmakers voted today")},
		{ID: "a3", SourceID: "src3", Title: "Completely unrelated sports story", Summary: strPtr("a team won a game")},
	}
	pairs := []pairKey{orderedPair("a1", "a2"), orderedPair("a1", "a3")}

	got := e.fallbackStage(articles, pairs)

	if len(got) != 1 || got[0] != orderedPair("a1", "a2") {
		t.Errorf("fallbackStage() = %v, want only the identical-text pair to survive", got)
	}
}

func TestFallbackStageTitleJaccardStrategyIgnoresSummary(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.FallbackStrategy = "title-jaccard"
	e.cfg.LLMThreshold = 0.9

	articles := []models.Article{
		{ID: "a1", SourceID: "src1", Title: "senate passes new bill", Summary: strPtr("one summary")},
		{ID: "a2", SourceID: "src2", Title: "senate passes new bill", Summary: strPtr("a totally different summary")},
	}
	pairs := []pairKey{orderedPair("a1", "a2")}

	got := e.fallbackStage(articles, pairs)

	if len(got) != 1 {
		t.Errorf("fallbackStage(title-jaccard) = %v, want the pair to survive on title match alone", got)
	}
}

func strPtr(s string) *string { return &s }
