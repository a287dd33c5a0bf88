package store

import (
	"database/sql"
	"testing"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestApplyClusterNullablesPopulatesSetFields(t *testing.T) {
	var c models.Cluster
	applyClusterNullables(&c,
		sql.NullString{String: "article-9", Valid: true},
		sql.NullString{Valid: false},
		sql.NullString{String: "summary text", Valid: true},
	)

	if c.MostNeutralArticle == nil || *c.MostNeutralArticle != "article-9" {
		t.Errorf("MostNeutralArticle = %v, want pointer to article-9", c.MostNeutralArticle)
	}
	if c.NeutralSummary != nil {
		t.Errorf("NeutralSummary = %v, want nil (not valid)", c.NeutralSummary)
	}
	if c.BiasSummary == nil || *c.BiasSummary != "summary text" {
		t.Errorf("BiasSummary = %v, want pointer to 'summary text'", c.BiasSummary)
	}
}

func TestApplyClusterNullablesLeavesNilWhenAllInvalid(t *testing.T) {
	var c models.Cluster
	applyClusterNullables(&c, sql.NullString{}, sql.NullString{}, sql.NullString{})

	if c.MostNeutralArticle != nil || c.NeutralSummary != nil || c.BiasSummary != nil {
		t.Errorf("expected all nil, got %+v", c)
	}
}
