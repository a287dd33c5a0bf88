package clustering

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/geraldfingburke/newsloom/internal/models"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// Cleanup runs the periodic cleanup pass (§4.5's "Cleanup pass"
// paragraph), the Scheduler's T_cleanup tick and the "cleanup" CLI
// command: dissolve clusters that have fallen below MinClusterSize (I4),
// repair any cluster that has somehow accumulated two articles from the
// same source (I1), and split or truncate clusters that have grown past
// MaxClusterSize (I2). Every fix is its own transaction so one bad cluster
// never blocks the rest of the sweep.
func (e *Engine) Cleanup(ctx context.Context) error {
	bySource, err := e.store.AllClusterIDsWithSourceCounts(ctx)
	if err != nil {
		return fmt.Errorf("clustering: cleanup: loading cluster membership: %w", err)
	}

	for clusterID, sources := range bySource {
		total := 0
		for _, ids := range sources {
			total += len(ids)
		}

		if total < models.MinClusterSize {
			if err := e.dissolveCluster(ctx, clusterID, sources); err != nil {
				log.Warn().Err(err).Str("cluster", clusterID).Msg("clustering: cleanup: dissolve failed")
			}
			continue
		}

		if err := e.repairSourceDuplicates(ctx, clusterID, sources); err != nil {
			log.Warn().Err(err).Str("cluster", clusterID).Msg("clustering: cleanup: I1 repair failed")
		}

		if total > models.MaxClusterSize {
			if err := e.splitOversizedCluster(ctx, clusterID); err != nil {
				log.Warn().Err(err).Str("cluster", clusterID).Msg("clustering: cleanup: mega-cluster split failed")
			}
		}
	}
	return nil
}

// dissolveCluster ungroups every member of a below-threshold cluster and
// removes the cluster row (I4), in one transaction.
func (e *Engine) dissolveCluster(ctx context.Context, clusterID string, sources map[string][]string) error {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, ids := range sources {
		for _, articleID := range ids {
			if err := store.UngroupArticleTx(ctx, tx, articleID); err != nil {
				tx.Rollback()
				return fmt.Errorf("ungroup: %w", err)
			}
		}
	}
	if err := store.DeleteClusterTx(ctx, tx, clusterID); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete cluster: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info().Str("cluster", clusterID).Msg("clustering: cleanup: dissolved undersized cluster")
	return nil
}

// repairSourceDuplicates enforces I1 after the fact: when a source ended up
// with more than one article in a cluster (e.g. a race during incremental
// ingestion), keep the earliest-id article and ungroup the rest back to
// the unclustered pool for the next batch sweep.
func (e *Engine) repairSourceDuplicates(ctx context.Context, clusterID string, sources map[string][]string) error {
	var toUngroup []string
	for _, ids := range sources {
		if len(ids) <= 1 {
			continue
		}
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		toUngroup = append(toUngroup, sorted[1:]...)
	}
	if len(toUngroup) == 0 {
		return nil
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, articleID := range toUngroup {
		if err := store.UngroupArticleTx(ctx, tx, articleID); err != nil {
			tx.Rollback()
			return fmt.Errorf("ungroup duplicate: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Warn().Str("cluster", clusterID).Int("ungrouped", len(toUngroup)).Msg("clustering: cleanup: repaired I1 violation")
	return nil
}

// megaClusterBucketFraction is the "H/2" in §4.5(c): a mega-cluster is
// split into time-window buckets half as wide as the incremental-ingestion
// window before each bucket is re-enforced and capped.
const megaClusterBucketFraction = 2

// splitOversizedCluster enforces I2 on a cluster that has grown past
// MaxClusterSize, per §4.5(c): partition members into H/2-hour
// publication-time buckets, re-enforce I1 within each bucket (keep the
// newest article per source), then cap each bucket at MaxClusterSize. A
// bucket that still exceeds MaxClusterSize after I1 repair cannot be split
// any finer by time alone, so it is dissolved entirely rather than
// truncated arbitrarily.
func (e *Engine) splitOversizedCluster(ctx context.Context, clusterID string) error {
	members, err := e.store.ArticlesByCluster(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	if len(members) <= models.MaxClusterSize {
		return nil
	}

	bucketWidth := e.cfg.IncrementalWindow / megaClusterBucketFraction
	if bucketWidth <= 0 {
		bucketWidth = 12 * time.Hour
	}
	buckets := bucketByPublishedAt(members, bucketWidth)

	var toUngroup []string
	for _, bucket := range buckets {
		survivors, ungrouped := repairBucketSourceDuplicates(bucket)
		toUngroup = append(toUngroup, ungrouped...)
		if len(survivors) > models.MaxClusterSize {
			log.Warn().Str("cluster", clusterID).Int("bucket_size", len(survivors)).Msg("clustering: cleanup: mega-cluster bucket could not be split further, dissolving bucket")
			for _, a := range survivors {
				toUngroup = append(toUngroup, a.ID)
			}
		}
	}
	if len(toUngroup) == 0 {
		return nil
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, articleID := range toUngroup {
		if err := store.UngroupArticleTx(ctx, tx, articleID); err != nil {
			tx.Rollback()
			return fmt.Errorf("ungroup overflow: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Warn().Str("cluster", clusterID).Int("ungrouped", len(toUngroup)).Msg("clustering: cleanup: split mega-cluster")
	return nil
}

// bucketByPublishedAt partitions members into fixed-width time buckets
// keyed by floor(PublishedAt / width), so the partition is deterministic
// and independent of processing order.
func bucketByPublishedAt(members []models.Article, width time.Duration) map[int64][]models.Article {
	widthSeconds := int64(width / time.Second)
	if widthSeconds <= 0 {
		widthSeconds = 1
	}
	buckets := map[int64][]models.Article{}
	for _, a := range members {
		key := a.PublishedAt.Unix() / widthSeconds
		buckets[key] = append(buckets[key], a)
	}
	return buckets
}

// repairBucketSourceDuplicates enforces I1 within one time bucket: when a
// source has more than one article in the bucket, the newest survives and
// the rest are reported for ungrouping.
func repairBucketSourceDuplicates(bucket []models.Article) (survivors []models.Article, ungrouped []string) {
	bySource := map[string][]models.Article{}
	for _, a := range bucket {
		bySource[a.SourceID] = append(bySource[a.SourceID], a)
	}
	for _, articles := range bySource {
		sort.Slice(articles, func(i, j int) bool {
			return articles[i].PublishedAt.After(articles[j].PublishedAt)
		})
		survivors = append(survivors, articles[0])
		for _, a := range articles[1:] {
			ungrouped = append(ungrouped, a.ID)
		}
	}
	return survivors, ungrouped
}
