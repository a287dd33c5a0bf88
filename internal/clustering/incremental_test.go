package clustering

import (
	"context"
	"testing"
	"time"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestBestMatchRejectsBelowSemanticThreshold(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.SemanticThreshold = 0.9

	article := models.Article{ID: "new", SourceID: "src1", Title: "Completely unrelated sports story", Summary: strPtr("a team won a game")}
	candidates := []models.Article{
		{ID: "old", SourceID: "src2", Title: "Senate passes new legislation", Summary: strPtr("lawmakers voted today")},
	}

	_, _, ok := e.bestMatch(context.Background(), article, candidates)
	if ok {
		t.Error("bestMatch() matched below SemanticThreshold, want no match")
	}
}

func TestBestMatchSkipsSameSourceCandidates(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.SemanticThreshold = 0
	e.cfg.LLMThreshold = 0

	article := models.Article{ID: "new", SourceID: "src1", Title: "Senate passes new bill", Summary: strPtr("lawmakers voted")}
	candidates := []models.Article{
		{ID: "same-source", SourceID: "src1", Title: "Senate passes new bill", Summary: strPtr("lawmakers voted")},
	}

	_, _, ok := e.bestMatch(context.Background(), article, candidates)
	if ok {
		t.Error("bestMatch() matched a same-source candidate, want I3 to exclude it")
	}
}

func TestBestMatchNoProvidersUsesFallbackFormula(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.SemanticThreshold = 0
	e.cfg.FallbackStrategy = "weighted"
	e.cfg.LLMThreshold = 0.5

	article := models.Article{ID: "new", SourceID: "src1", Title: "Senate passes new bill", Summary: strPtr("lawmakers voted today")}
	match := models.Article{ID: "match", SourceID: "src2", Title: "Senate passes new bill", Summary: strPtr("lawmakers voted today")}
	unrelated := models.Article{ID: "unrelated", SourceID: "src3", Title: "Completely unrelated sports story", Summary: strPtr("a team won a game")}

	best, _, ok := e.bestMatch(context.Background(), article, []models.Article{unrelated, match})
	if !ok {
		t.Fatal("bestMatch() found no match, want the identical-text candidate to pass the fallback formula")
	}
	if best.ID != match.ID {
		t.Errorf("bestMatch() picked %q, want %q", best.ID, match.ID)
	}
}

func TestBestMatchFallbackRejectsBelowLLMThreshold(t *testing.T) {
	e := &Engine{cfg: DefaultConfig()}
	e.cfg.SemanticThreshold = 0
	e.cfg.FallbackStrategy = "title-jaccard"
	e.cfg.LLMThreshold = 0.99

	article := models.Article{ID: "new", SourceID: "src1", Title: "senate passes a new bill today", Summary: strPtr("x")}
	candidate := models.Article{ID: "old", SourceID: "src2", Title: "senate passes bill", Summary: strPtr("y")}

	_, _, ok := e.bestMatch(context.Background(), article, []models.Article{candidate})
	if ok {
		t.Error("bestMatch() matched below the fallback LLMThreshold, want no match")
	}
}

func TestSortIDsByCreatedAtThenIDOrdersChronologically(t *testing.T) {
	now := time.Now()
	byID := map[string]models.Article{
		"zzz-later":   {ID: "zzz-later", CreatedAt: now.Add(time.Minute)},
		"aaa-earlier": {ID: "aaa-earlier", CreatedAt: now},
	}
	ids := []string{"zzz-later", "aaa-earlier"}

	sortIDsByCreatedAtThenID(ids, byID)

	if ids[0] != "aaa-earlier" || ids[1] != "zzz-later" {
		t.Errorf("sortIDsByCreatedAtThenID() = %v, want earlier CreatedAt first regardless of id string order", ids)
	}
}

func TestSortIDsByCreatedAtThenIDBreaksTiesOnID(t *testing.T) {
	now := time.Now()
	byID := map[string]models.Article{
		"zzz": {ID: "zzz", CreatedAt: now},
		"aaa": {ID: "aaa", CreatedAt: now},
	}
	ids := []string{"zzz", "aaa"}

	sortIDsByCreatedAtThenID(ids, byID)

	if ids[0] != "aaa" || ids[1] != "zzz" {
		t.Errorf("sortIDsByCreatedAtThenID() tie-break = %v, want smallest id first", ids)
	}
}
