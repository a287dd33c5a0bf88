package coverage

import (
	"testing"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestScorePerfectBalanceAndDiversity(t *testing.T) {
	// One article from each bias bucket, three distinct sources: biasBalance=3,
	// biasScore=100, diversity=100, so the score should land at 100.
	got := Score(Counts{Left: 1, Center: 1, Right: 1}, 3)
	if got != 100 {
		t.Errorf("Score(balanced, 3 sources) = %d, want 100", got)
	}
}

func TestScoreSingleBucketScoresLow(t *testing.T) {
	got := Score(Counts{Left: 0, Center: 5, Right: 0}, 1)
	if got > 30 {
		t.Errorf("Score(single bucket, one source) = %d, want a low score", got)
	}
}

func TestScoreTwoOfThreeBucketsUsesIndicatorSum(t *testing.T) {
	// left=1, right=1, center=0, 2 distinct sources: biasBalance=2,
	// biasScore=100*2/3=66.67, diversity=100*2/2=100, score=0.7*66.67+0.3*100=76.67->77.
	got := Score(Counts{Left: 1, Center: 0, Right: 1}, 2)
	if got != 77 {
		t.Errorf("Score(two of three buckets) = %d, want 77", got)
	}
}

func TestScoreEmptyClusterIsZero(t *testing.T) {
	if got := Score(Counts{}, 0); got != 0 {
		t.Errorf("Score(empty) = %d, want 0", got)
	}
}

func TestScoreNeverExceedsClampedRange(t *testing.T) {
	got := Score(Counts{Left: 10, Center: 10, Right: 10}, 100)
	if got < 0 || got > 100 {
		t.Errorf("Score out of range: %d", got)
	}
}

func TestMissingBucketsDetection(t *testing.T) {
	tests := []struct {
		name  string
		c     Counts
		count int
	}{
		{"all present", Counts{1, 1, 1}, 0},
		{"right missing", Counts{1, 1, 0}, 1},
		{"only center", Counts{0, 1, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := missingBuckets(tt.c); len(got) != tt.count {
				t.Errorf("missingBuckets(%v) = %v, want %d entries", tt.c, got, tt.count)
			}
		})
	}
}

func TestClassifyBlindspotEscalatesOnMultipleMissing(t *testing.T) {
	kind, severity, _ := classifyBlindspot([]models.BlindspotKind{models.BlindspotLeftMissing, models.BlindspotRightMissing}, false)
	if kind != models.BlindspotUnderreported || severity != models.SeverityHigh {
		t.Errorf("classifyBlindspot(2 missing) = (%v, %v), want (underreported, high)", kind, severity)
	}
}

func TestClassifyBlindspotSingleMissingIsMedium(t *testing.T) {
	kind, severity, _ := classifyBlindspot([]models.BlindspotKind{models.BlindspotLeftMissing}, false)
	if kind != models.BlindspotLeftMissing || severity != models.SeverityMedium {
		t.Errorf("classifyBlindspot(1 missing) = (%v, %v), want (left_missing, medium)", kind, severity)
	}
}

func TestClassifyBlindspotStaleEscalatesEvenWithoutMissingBuckets(t *testing.T) {
	kind, severity, _ := classifyBlindspot(nil, true)
	if kind != models.BlindspotUnderreported || severity != models.SeverityHigh {
		t.Errorf("classifyBlindspot(stale) = (%v, %v), want (underreported, high)", kind, severity)
	}
}
