// Package coverage is the Coverage Tracker (C8): derives a cluster's
// per-bias article counts and coverage score wholesale from current
// membership, and raises blindspot advisories for users who read a story
// missing one or more perspectives. Every figure here is a pure function
// of the counts passed in — no partial updates, matching the teacher's
// "recompute, don't patch" analytics style.
package coverage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/models"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// UnderreportedWindow is the lookback used to judge a cluster "stale"
// enough to flag as underreported (§4.7).
const UnderreportedWindow = 7 * 24 * time.Hour

// Tracker is the Coverage Tracker.
type Tracker struct {
	store *store.Store
}

// New builds a Tracker over the Store Gateway.
func New(st *store.Store) *Tracker {
	return &Tracker{store: st}
}

// Counts is the raw per-bias tally a coverage score is derived from.
type Counts struct {
	Left, Center, Right int
}

func (c Counts) total() int { return c.Left + c.Center + c.Right }

// biasBalance is the count of non-empty buckets out of three (§4.7): a
// cluster covering all three leanings scores 3, a single-bucket cluster
// scores 1, an empty cluster scores 0.
func biasBalance(c Counts) int {
	balance := 0
	if c.Left > 0 {
		balance++
	}
	if c.Center > 0 {
		balance++
	}
	if c.Right > 0 {
		balance++
	}
	return balance
}

// sourceDiversity is 100 * min(distinct sources / total articles, 1).
func sourceDiversity(distinctSources, total int) float64 {
	if total == 0 {
		return 0
	}
	ratio := float64(distinctSources) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	return 100 * ratio
}

// Score computes the coverage score for a cluster: 0.7 * bias score
// (100 * biasBalance / 3) + 0.3 * source diversity, clamped 0-100.
func Score(c Counts, distinctSources int) int {
	biasScore := 100 * float64(biasBalance(c)) / 3
	diversity := sourceDiversity(distinctSources, c.total())
	return models.ClampCoverageScore(int(0.7*biasScore + 0.3*diversity + 0.5)) // +0.5: round half up
}

// Refresh recomputes and persists one cluster's coverage record from its
// current membership, and raises or suppresses blindspots accordingly.
// The Scheduler and the CLI call it after enrich and cleanup runs, for each
// cluster whose analysis is still pending.
func (t *Tracker) Refresh(ctx context.Context, clusterID string) error {
	members, err := t.store.ArticlesByCluster(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("coverage: loading members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}

	counts := Counts{}
	sources := map[string]bool{}
	var firstReported time.Time
	for _, a := range members {
		sources[a.SourceID] = true
		if firstReported.IsZero() || a.PublishedAt.Before(firstReported) {
			firstReported = a.PublishedAt
		}
		switch a.Bias {
		case models.BiasLeft:
			counts.Left++
		case models.BiasCenter:
			counts.Center++
		case models.BiasRight:
			counts.Right++
		}
	}

	record := &models.CoverageRecord{
		ClusterID:       clusterID,
		LeftCount:       counts.Left,
		CenterCount:     counts.Center,
		RightCount:      counts.Right,
		Total:           len(members),
		CoverageScore:   Score(counts, len(sources)),
		FirstReportedAt: firstReported,
		LastUpdatedAt:   time.Now(),
	}

	tx, err := t.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("coverage: begin tx: %w", err)
	}
	if err := store.UpsertCoverageTx(ctx, tx, record); err != nil {
		tx.Rollback()
		return fmt.Errorf("coverage: upsert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("coverage: commit: %w", err)
	}

	if err := t.raiseBlindspots(ctx, clusterID, counts, firstReported); err != nil {
		log.Warn().Err(err).Str("cluster", clusterID).Msg("coverage: blindspot derivation failed")
	}
	return nil
}

// raiseBlindspots implements §4.7's advisory rules: one missing bucket is
// a medium-severity "X missing" advisory, two or more missing buckets
// escalate to a high-severity "underreported" advisory, and a cluster
// older than UnderreportedWindow with thin overall coverage is flagged the
// same way regardless of bucket spread. Advisories are per interested
// user and never duplicated while one is already active (§4.7).
func (t *Tracker) raiseBlindspots(ctx context.Context, clusterID string, counts Counts, firstReported time.Time) error {
	missing := missingBuckets(counts)
	stale := !firstReported.IsZero() && time.Since(firstReported) > UnderreportedWindow

	if len(missing) == 0 && !stale {
		return nil
	}

	users, err := t.store.UsersInterestedInCluster(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("listing interested users: %w", err)
	}

	for _, userID := range users {
		exists, err := t.store.ActiveBlindspotExists(ctx, userID, clusterID)
		if err != nil {
			return fmt.Errorf("checking existing blindspot: %w", err)
		}
		if exists {
			continue
		}

		kind, severity, desc := classifyBlindspot(missing, stale)
		b := &models.Blindspot{
			ID:          uuid.NewString(),
			UserID:      userID,
			ClusterID:   clusterID,
			Kind:        kind,
			Severity:    severity,
			Description: desc,
		}
		if err := t.store.InsertBlindspot(ctx, b); err != nil {
			return fmt.Errorf("inserting blindspot: %w", err)
		}
	}
	return nil
}

func missingBuckets(c Counts) []models.BlindspotKind {
	var missing []models.BlindspotKind
	if c.Left == 0 {
		missing = append(missing, models.BlindspotLeftMissing)
	}
	if c.Center == 0 {
		missing = append(missing, models.BlindspotCenterMissing)
	}
	if c.Right == 0 {
		missing = append(missing, models.BlindspotRightMissing)
	}
	return missing
}

func classifyBlindspot(missing []models.BlindspotKind, stale bool) (models.BlindspotKind, models.BlindspotSeverity, string) {
	if len(missing) >= 2 || stale {
		return models.BlindspotUnderreported, models.SeverityHigh, "This story is missing multiple perspectives or has gone unreported for over a week."
	}
	kind := missing[0]
	switch kind {
	case models.BlindspotLeftMissing:
		return kind, models.SeverityMedium, "No left-leaning source has covered this story yet."
	case models.BlindspotRightMissing:
		return kind, models.SeverityMedium, "No right-leaning source has covered this story yet."
	default:
		return kind, models.SeverityMedium, "No center source has covered this story yet."
	}
}
