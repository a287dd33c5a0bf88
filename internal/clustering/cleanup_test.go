package clustering

import (
	"testing"
	"time"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestBucketByPublishedAtGroupsWithinWidth(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	width := 12 * time.Hour

	members := []models.Article{
		{ID: "a1", PublishedAt: base},
		{ID: "a2", PublishedAt: base.Add(time.Hour)},
		{ID: "a3", PublishedAt: base.Add(width)},
	}

	buckets := bucketByPublishedAt(members, width)

	if len(buckets) != 2 {
		t.Fatalf("bucketByPublishedAt() produced %d buckets, want 2", len(buckets))
	}
	var sawPair bool
	for _, b := range buckets {
		if len(b) == 2 {
			sawPair = true
		}
	}
	if !sawPair {
		t.Error("bucketByPublishedAt() did not keep a1/a2 in the same bucket")
	}
}

func TestRepairBucketSourceDuplicatesKeepsNewest(t *testing.T) {
	now := time.Now()
	bucket := []models.Article{
		{ID: "old", SourceID: "src1", PublishedAt: now.Add(-time.Hour)},
		{ID: "new", SourceID: "src1", PublishedAt: now},
		{ID: "other", SourceID: "src2", PublishedAt: now},
	}

	survivors, ungrouped := repairBucketSourceDuplicates(bucket)

	if len(survivors) != 2 {
		t.Fatalf("repairBucketSourceDuplicates() survivors = %v, want 2", survivors)
	}
	if len(ungrouped) != 1 || ungrouped[0] != "old" {
		t.Errorf("repairBucketSourceDuplicates() ungrouped = %v, want [old]", ungrouped)
	}
	for _, s := range survivors {
		if s.ID == "old" {
			t.Error("repairBucketSourceDuplicates() kept the older duplicate instead of the newest")
		}
	}
}

func TestRepairBucketSourceDuplicatesNoDuplicatesKeepsAll(t *testing.T) {
	now := time.Now()
	bucket := []models.Article{
		{ID: "a1", SourceID: "src1", PublishedAt: now},
		{ID: "a2", SourceID: "src2", PublishedAt: now},
	}

	survivors, ungrouped := repairBucketSourceDuplicates(bucket)

	if len(survivors) != 2 || len(ungrouped) != 0 {
		t.Errorf("repairBucketSourceDuplicates() = (%v, %v), want all members to survive untouched", survivors, ungrouped)
	}
}
