// Package models defines the core domain entities of the aggregation and
// bias-analysis pipeline: sources, articles, clusters, coverage records,
// and the supporting entities consumed by the read API.
//
// # Ownership
//
// The Store Gateway owns all persisted state. Within that, a narrower rule
// holds per entity:
//   - Clustering Engine is the only writer of an article's cluster id and of
//     cluster rows themselves (creation, membership moves, deletion).
//   - Bias Analyzer is the only writer of per-article bias fields and of a
//     cluster's neutral summary / most-neutral pick.
//   - Coverage Tracker is the only writer of coverage records.
//
// # Identity
//
// Every entity with a "stable id" in this package uses a string UUID
// (github.com/google/uuid), not a database serial, so that ids can be
// minted before a row exists (e.g. a provisional cluster during assembly).
package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// BiasLabel is a source's or article's political-leaning classification.
type BiasLabel string

const (
	BiasUnknown BiasLabel = "unknown"
	BiasLeft    BiasLabel = "left"
	BiasCenter  BiasLabel = "center"
	BiasRight   BiasLabel = "right"
)

// Source is a news outlet ingested by the Feed Reader.
//
// Uniqueness: FeedURL. Sources with BiasUnknown are skipped by both
// ingestion and clustering until an operator assigns a real label.
type Source struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	HomeURL     string    `json:"home_url" db:"home_url"`
	FeedURL     string    `json:"feed_url" db:"feed_url"`
	Bias        BiasLabel `json:"bias" db:"bias"`
	LastFetchAt time.Time `json:"last_fetch_at" db:"last_fetch_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Article is one entry read from a source's feed.
//
// ClusterID is nil until the Clustering Engine assigns the article to a
// cluster, and is cleared again if the cleanup pass dissolves that cluster.
// Bias is copied from the owning source at insertion time (I5) and is never
// rewritten except by the operator-initiated reseed path. PoliticalLeaning,
// Sensationalism and FramingNote are nil until the Bias Analyzer runs.
type Article struct {
	ID                string    `json:"id" db:"id"`
	SourceID          string    `json:"source_id" db:"source_id"`
	ClusterID         *string   `json:"cluster_id" db:"cluster_id"`
	Title             string    `json:"title" db:"title"`
	CanonicalLink     string    `json:"canonical_link" db:"canonical_link"`
	Summary           *string   `json:"summary" db:"summary"`
	PublishedAt       time.Time `json:"published_at" db:"published_at"`
	ImageURL          string    `json:"image_url" db:"image_url"`
	Bias              BiasLabel `json:"bias" db:"bias"`
	Indexed           bool      `json:"indexed" db:"indexed"`
	BiasAnalyzed      bool      `json:"bias_analyzed" db:"bias_analyzed"`
	PoliticalLeaning  *float64  `json:"political_leaning" db:"political_leaning"`
	Sensationalism    *float64  `json:"sensationalism" db:"sensationalism"`
	FramingNote       *string   `json:"framing_note" db:"framing_note"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// MaxSummaryLen is the truncation length applied to every ingested summary.
const MaxSummaryLen = 1000

// MinClusterableSummaryLen is the minimum summary length (I.e. boundary
// behaviour: "an article with a summary < 20 chars is never considered in
// clustering") required for an article to enter the cascade.
const MinClusterableSummaryLen = 20

// Cluster (called "article group" in the store schema) is a set of
// articles judged to report the same underlying event, drawn from
// distinct sources (I1, I3).
type Cluster struct {
	ID                 string    `json:"id" db:"id"`
	DisplayName        string    `json:"display_name" db:"display_name"`
	MasterArticleID    string    `json:"master_article_id" db:"master_article_id"`
	MostNeutralArticle *string   `json:"most_neutral_article_id" db:"most_neutral_article_id"`
	NeutralSummary     *string   `json:"neutral_summary" db:"neutral_summary"`
	BiasSummary        *string   `json:"bias_summary" db:"bias_summary"`
	AnalysisComplete   bool      `json:"analysis_complete" db:"analysis_complete"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// MaxClusterSize is invariant I2: a cluster holds at most this many articles.
const MaxClusterSize = 15

// MinClusterSize is invariant I4: below this, a cluster is dissolved by the
// cleanup pass.
const MinClusterSize = 2

// CoverageRecord is the derived per-cluster coverage snapshot computed by
// the Coverage Tracker (§4.7). It is always recomputed wholesale from
// current cluster membership, never patched incrementally.
type CoverageRecord struct {
	ClusterID       string    `json:"cluster_id" db:"cluster_id"`
	LeftCount       int       `json:"left_count" db:"left_count"`
	CenterCount     int       `json:"center_count" db:"center_count"`
	RightCount      int       `json:"right_count" db:"right_count"`
	Total           int       `json:"total" db:"total"`
	CoverageScore   int       `json:"coverage_score" db:"coverage_score"`
	FirstReportedAt time.Time `json:"first_reported_at" db:"first_reported_at"`
	LastUpdatedAt   time.Time `json:"last_updated_at" db:"last_updated_at"`
}

// BlindspotKind enumerates the kinds of missing-perspective advisories.
type BlindspotKind string

const (
	BlindspotLeftMissing   BlindspotKind = "left_missing"
	BlindspotCenterMissing BlindspotKind = "center_missing"
	BlindspotRightMissing  BlindspotKind = "right_missing"
	BlindspotUnderreported BlindspotKind = "underreported"
)

// BlindspotSeverity is the advisory's urgency.
type BlindspotSeverity string

const (
	SeverityLow    BlindspotSeverity = "low"
	SeverityMedium BlindspotSeverity = "medium"
	SeverityHigh   BlindspotSeverity = "high"
)

// Blindspot is a per-user advisory that a cluster under-represents one or
// more bias perspectives the user tends to read.
type Blindspot struct {
	ID               string            `json:"id" db:"id"`
	UserID           string            `json:"user_id" db:"user_id"`
	ClusterID        string            `json:"cluster_id" db:"cluster_id"`
	Kind             BlindspotKind     `json:"kind" db:"kind"`
	Severity         BlindspotSeverity `json:"severity" db:"severity"`
	Description      string            `json:"description" db:"description"`
	SuggestedSources StringArray       `json:"suggested_sources" db:"suggested_sources"`
	Dismissed        bool              `json:"dismissed" db:"dismissed"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at"`
}

// User is a read-API consumer; not part of the pipeline's hot path.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Rating is a user's reaction to a single article; read-API-only.
type Rating struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ArticleID string    `json:"article_id" db:"article_id"`
	Score     int       `json:"score" db:"score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AIJobKind distinguishes the pipeline operation an AIAnalysisJob recorded.
type AIJobKind string

const (
	JobKindBiasAnalysis     AIJobKind = "bias_analysis"
	JobKindSimilarityJudge  AIJobKind = "similarity_judgment"
	JobKindEmbedding        AIJobKind = "embedding"
)

// AIAnalysisJob is an audit record of one LLM Client invocation, kept for
// operator visibility (status, config commands) — not read by the pipeline.
type AIAnalysisJob struct {
	ID         string    `json:"id" db:"id"`
	Kind       AIJobKind `json:"kind" db:"kind"`
	ClusterID  *string   `json:"cluster_id" db:"cluster_id"`
	Succeeded  bool      `json:"succeeded" db:"succeeded"`
	Error      *string   `json:"error" db:"error"`
	DurationMS int       `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// StringArray adapts a Go []string to a PostgreSQL TEXT[] column via
// github.com/lib/pq, mirroring the driver.Valuer/sql.Scanner pair every
// array-typed column in this store needs.
type StringArray []string

// Value implements driver.Valuer.
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	return pq.Array(a).Value()
}

// Scan implements sql.Scanner.
func (a *StringArray) Scan(value interface{}) error {
	return pq.Array(a).Scan(value)
}

// ClampPoliticalLeaning enforces I7's range on a raw computed value.
func ClampPoliticalLeaning(v float64) float64 {
	return clamp(v, -1, 1)
}

// ClampSensationalism enforces I7's range on a raw computed value.
func ClampSensationalism(v float64) float64 {
	return clamp(v, 0, 1)
}

// ClampCoverageScore enforces I7's range on a raw computed value.
func ClampCoverageScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
