package store

import (
	"database/sql"
	"testing"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestBoundArticlesPerSourceEnforcesPerSourceCap(t *testing.T) {
	all := []models.Article{
		{ID: "1", SourceID: "a"},
		{ID: "2", SourceID: "a"},
		{ID: "3", SourceID: "a"},
		{ID: "4", SourceID: "b"},
	}
	got := boundArticlesPerSource(all, -1, 2)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (2 from source a, 1 from source b)", len(got))
	}
	counts := map[string]int{}
	for _, a := range got {
		counts[a.SourceID]++
	}
	if counts["a"] != 2 || counts["b"] != 1 {
		t.Errorf("counts = %v, want a=2 b=1", counts)
	}
}

func TestBoundArticlesPerSourceEnforcesTotalCap(t *testing.T) {
	all := []models.Article{
		{ID: "1", SourceID: "a"},
		{ID: "2", SourceID: "b"},
		{ID: "3", SourceID: "c"},
	}
	got := boundArticlesPerSource(all, 2, -1)
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestBoundArticlesPerSourceUnlimitedWhenNegative(t *testing.T) {
	all := []models.Article{
		{ID: "1", SourceID: "a"},
		{ID: "2", SourceID: "a"},
		{ID: "3", SourceID: "a"},
	}
	got := boundArticlesPerSource(all, -1, -1)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3 (no caps applied)", len(got))
	}
}

func TestApplyArticleNullablesPopulatesOptionalFields(t *testing.T) {
	var a models.Article
	applyArticleNullables(&a,
		sql.NullString{String: "cluster-1", Valid: true},
		sql.NullString{String: "a summary", Valid: true},
		sql.NullString{Valid: false},
		"left",
		sql.NullFloat64{Float64: -0.4, Valid: true},
		sql.NullFloat64{Valid: false},
	)

	if a.Bias != models.BiasLeft {
		t.Errorf("Bias = %v, want %v", a.Bias, models.BiasLeft)
	}
	if a.ClusterID == nil || *a.ClusterID != "cluster-1" {
		t.Errorf("ClusterID = %v, want pointer to cluster-1", a.ClusterID)
	}
	if a.Summary == nil || *a.Summary != "a summary" {
		t.Errorf("Summary = %v, want pointer to 'a summary'", a.Summary)
	}
	if a.FramingNote != nil {
		t.Errorf("FramingNote = %v, want nil (not valid)", a.FramingNote)
	}
	if a.PoliticalLeaning == nil || *a.PoliticalLeaning != -0.4 {
		t.Errorf("PoliticalLeaning = %v, want pointer to -0.4", a.PoliticalLeaning)
	}
	if a.Sensationalism != nil {
		t.Errorf("Sensationalism = %v, want nil (not valid)", a.Sensationalism)
	}
}
