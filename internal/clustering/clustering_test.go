package clustering

import (
	"testing"
	"time"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestOrderArticlesByCreatedAtThenID(t *testing.T) {
	t0 := time.Now()
	articles := []models.Article{
		{ID: "b", CreatedAt: t0},
		{ID: "a", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(-time.Hour)},
	}

	orderArticles(articles)

	want := []string{"c", "a", "b"}
	for i, id := range want {
		if articles[i].ID != id {
			t.Errorf("orderArticles()[%d].ID = %q, want %q", i, articles[i].ID, id)
		}
	}
}

func TestDefaultConfigMatchesSpecDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxPerSource != 50 {
		t.Errorf("MaxPerSource = %d, want 50", cfg.MaxPerSource)
	}
	if cfg.TopMCandidates != 10 {
		t.Errorf("TopMCandidates = %d, want 10", cfg.TopMCandidates)
	}
	if cfg.IncrementalWindow != 24*time.Hour {
		t.Errorf("IncrementalWindow = %v, want 24h", cfg.IncrementalWindow)
	}
	if cfg.FallbackStrategy != "weighted" {
		t.Errorf("FallbackStrategy = %q, want \"weighted\"", cfg.FallbackStrategy)
	}
}
