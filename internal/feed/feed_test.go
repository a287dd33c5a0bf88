package feed

import (
	"context"
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"

	"github.com/geraldfingburke/newsloom/internal/models"
)

func TestExtractArticleRejectsShortTitle(t *testing.T) {
	item := &gofeed.Item{Link: "https://example.com/a", Title: "Hi"}
	_, ok := extractArticle(item, models.Source{ID: "src1"})
	if ok {
		t.Error("extractArticle accepted a title shorter than minTitleLen")
	}
}

func TestExtractArticleRejectsMissingLink(t *testing.T) {
	item := &gofeed.Item{Title: "A perfectly reasonable headline"}
	_, ok := extractArticle(item, models.Source{ID: "src1"})
	if ok {
		t.Error("extractArticle accepted an item with no link")
	}
}

func TestExtractArticleAcceptsValidItem(t *testing.T) {
	item := &gofeed.Item{Link: "https://example.com/a", Title: "A perfectly reasonable headline", Description: "Some summary text."}
	a, ok := extractArticle(item, models.Source{ID: "src1", Bias: models.BiasLeft})
	if !ok {
		t.Fatal("extractArticle rejected a valid item")
	}
	if a.SourceID != "src1" || a.Bias != models.BiasLeft {
		t.Errorf("extractArticle did not copy source fields: %+v", a)
	}
	if a.CanonicalLink != item.Link {
		t.Errorf("CanonicalLink = %q, want %q", a.CanonicalLink, item.Link)
	}
}

func TestExtractSummaryStripsTagsAndTruncates(t *testing.T) {
	item := &gofeed.Item{Description: "<p>Hello &amp; welcome</p>   to   the   <b>news</b>."}
	got := extractSummary(item)
	if strings.Contains(got, "<") {
		t.Errorf("extractSummary left markup in output: %q", got)
	}
	if !strings.Contains(got, "Hello & welcome") {
		t.Errorf("extractSummary did not unescape entities: %q", got)
	}

	long := &gofeed.Item{Description: strings.Repeat("a", models.MaxSummaryLen+500)}
	if got := extractSummary(long); len(got) != models.MaxSummaryLen {
		t.Errorf("extractSummary length = %d, want %d", len(got), models.MaxSummaryLen)
	}
}

func TestExtractSummaryFallsBackToContent(t *testing.T) {
	item := &gofeed.Item{Content: "fallback body text"}
	if got := extractSummary(item); got != "fallback body text" {
		t.Errorf("extractSummary = %q, want content fallback", got)
	}
}

func TestExtractImageURLPrefersEnclosure(t *testing.T) {
	item := &gofeed.Item{
		Enclosures: []*gofeed.Enclosure{{URL: "https://example.com/img.jpg", Type: "image/jpeg"}},
		Image:      &gofeed.Image{URL: "https://example.com/other.jpg"},
	}
	if got := extractImageURL(item); got != "https://example.com/img.jpg" {
		t.Errorf("extractImageURL = %q, want enclosure image", got)
	}
}

func TestExtractImageURLFallsBackToTopLevelImage(t *testing.T) {
	item := &gofeed.Item{Image: &gofeed.Image{URL: "https://example.com/top.jpg"}}
	if got := extractImageURL(item); got != "https://example.com/top.jpg" {
		t.Errorf("extractImageURL = %q, want top-level image", got)
	}
}

func TestExtractImageURLReturnsEmptyWhenNoneFound(t *testing.T) {
	item := &gofeed.Item{}
	if got := extractImageURL(item); got != "" {
		t.Errorf("extractImageURL = %q, want empty string", got)
	}
}

type fakeClusterer struct{ calls int }

func (f *fakeClusterer) ProcessIncremental(ctx context.Context, article models.Article) error {
	f.calls++
	return nil
}

func TestSetIncrementalClustererWiresField(t *testing.T) {
	r := New(nil)
	if r.clusterer != nil {
		t.Fatal("New() produced a Reader with a non-nil clusterer before wiring")
	}
	stub := &fakeClusterer{}
	r.SetIncrementalClusterer(stub)
	if r.clusterer != stub {
		t.Error("SetIncrementalClusterer did not wire the provided clusterer")
	}
}
