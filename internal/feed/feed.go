// Package feed is the Feed Reader (C2): polls each known-bias source,
// parses entries with github.com/mmcdole/gofeed, deduplicates by
// canonical link, and persists new articles. Bounded-parallelism fetch
// across sources is golang.org/x/sync/errgroup, grounded on
// jordigilh-kubernaut's use of errgroup for worker fan-out; per-source
// entry processing stays strictly sequential so dedupe is race-free (§5).
package feed

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/geraldfingburke/newsloom/internal/models"
	"github.com/geraldfingburke/newsloom/internal/store"
)

// ErrFeedUnavailable is returned when a source's feed cannot be fetched or
// parsed after transport-level retries; it never escapes to Reader's
// caller, only to its own internal logging (§4.1).
var ErrFeedUnavailable = errors.New("feed: unavailable")

const (
	// MaxConcurrentFetches bounds parallel source fetches, per §5's
	// "suggested: min(|sources|, 8)".
	MaxConcurrentFetches = 8

	minTitleLen = 5

	// fetchMaxAttempts and fetchBackoff implement §7's "transient
	// transport (feed fetch, embedding, LLM): retry up to 3x with
	// backoff" for the feed-fetch leg specifically.
	fetchMaxAttempts = 3
	fetchBackoff     = 1 * time.Second
	fetchTimeout     = 30 * time.Second
)

// IncrementalClusterer is the narrow interface the Feed Reader needs from
// the Clustering Engine to run §4.5's incremental-ingestion path
// immediately after a new article is inserted. Defined here, at the
// consumer, so this package never imports internal/clustering — the same
// avoid-a-cycle idiom internal/bias uses for its own Analyzer interface.
type IncrementalClusterer interface {
	ProcessIncremental(ctx context.Context, article models.Article) error
}

// Reader is the Feed Reader.
type Reader struct {
	store     *store.Store
	parser    *gofeed.Parser
	clusterer IncrementalClusterer // nil until SetIncrementalClusterer is called
}

// New builds a Reader over the Store Gateway.
func New(st *store.Store) *Reader {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: fetchTimeout}
	return &Reader{store: st, parser: parser}
}

// SetIncrementalClusterer wires the Clustering Engine's incremental path in
// after construction, since the Engine is itself built from a Reader-free
// dependency set but the Reader is what discovers new articles.
func (r *Reader) SetIncrementalClusterer(c IncrementalClusterer) {
	r.clusterer = c
}

// Run fetches every known-bias source in bounded parallel, inserting new
// articles and touching each source's last-fetch timestamp. A per-source
// failure is logged and does not abort the others.
func (r *Reader) Run(ctx context.Context, maxArticlesPerRun int) error {
	sources, err := r.store.ListKnownBiasSources(ctx)
	if err != nil {
		return fmt.Errorf("feed: listing sources: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentFetches)

	total := 0
	for _, src := range sources {
		src := src
		g.Go(func() error {
			n, err := r.fetchSource(gctx, src)
			if err != nil {
				log.Warn().Err(err).Str("source", src.Name).Msg("feed: source fetch failed")
				return nil // per-source error never aborts the batch
			}
			total += n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Int("inserted", total).Int("sources", len(sources)).Msg("feed: run complete")
	return nil
}

// fetchSource fetches and processes one source's feed entries strictly
// sequentially (dedupe race-freedom, §5), returning the count of newly
// inserted articles.
func (r *Reader) fetchSource(ctx context.Context, src models.Source) (int, error) {
	if src.FeedURL == "" {
		return 0, nil
	}

	parsed, err := r.parseWithRetry(ctx, src.FeedURL)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, src.FeedURL, err)
	}

	inserted := 0
	for _, item := range parsed.Items {
		a, ok := extractArticle(item, src)
		if !ok {
			continue
		}

		exists, err := r.store.ArticleExistsByLink(ctx, a.CanonicalLink)
		if err != nil {
			log.Warn().Err(err).Str("link", a.CanonicalLink).Msg("feed: dedupe lookup failed, skipping entry")
			continue
		}
		if exists {
			continue
		}

		tx, err := r.store.BeginTx(ctx)
		if err != nil {
			return inserted, fmt.Errorf("feed: begin tx: %w", err)
		}
		if err := store.InsertArticleTx(ctx, tx, &a); err != nil {
			tx.Rollback()
			log.Warn().Err(err).Str("link", a.CanonicalLink).Msg("feed: insert failed, skipping entry")
			continue
		}
		if err := tx.Commit(); err != nil {
			return inserted, fmt.Errorf("feed: commit insert: %w", err)
		}
		inserted++

		if r.clusterer != nil {
			if err := r.clusterer.ProcessIncremental(ctx, a); err != nil {
				log.Warn().Err(err).Str("article", a.ID).Msg("feed: incremental clustering failed, deferring to next batch sweep")
			}
		}
	}

	if err := r.store.TouchSourceFetchedAt(ctx, src.ID, time.Now()); err != nil {
		return inserted, fmt.Errorf("feed: touch source fetched_at: %w", err)
	}
	return inserted, nil
}

// parseWithRetry applies §7's transient-transport policy to the feed-fetch
// leg: up to fetchMaxAttempts attempts, each bounded by fetchTimeout, linear
// backoff between attempts.
func (r *Reader) parseWithRetry(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchMaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		parsed, err := r.parser.ParseURLWithContext(feedURL, callCtx)
		cancel()
		if err == nil {
			return parsed, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("feed", feedURL).Msg("feed: fetch failed, retrying")
		if attempt < fetchMaxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * fetchBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// extractArticle applies §4.1's extraction rules. Returns ok=false when the
// entry fails the acceptance criteria (link + title length).
func extractArticle(item *gofeed.Item, src models.Source) (models.Article, bool) {
	if item.Link == "" || len(strings.TrimSpace(item.Title)) < minTitleLen {
		return models.Article{}, false
	}

	publishedAt := time.Now()
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	}

	summary := extractSummary(item)
	var summaryPtr *string
	if summary != "" {
		summaryPtr = &summary
	}

	return models.Article{
		ID:            uuid.NewString(),
		SourceID:      src.ID,
		Title:         strings.TrimSpace(item.Title),
		CanonicalLink: item.Link,
		Summary:       summaryPtr,
		PublishedAt:   publishedAt,
		ImageURL:      extractImageURL(item),
		Bias:          src.Bias,
	}, true
}

var tagRe = regexp.MustCompile(`<[^>]*>`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// extractSummary takes the item's description, or its content when the
// description is empty, strips markup, normalizes whitespace, and truncates to 1000
// characters, per §4.1.
func extractSummary(item *gofeed.Item) string {
	candidate := item.Description
	if candidate == "" {
		candidate = item.Content
	}
	if candidate == "" {
		return ""
	}
	stripped := tagRe.ReplaceAllString(candidate, " ")
	stripped = html.UnescapeString(stripped)
	stripped = strings.TrimSpace(whitespaceRe.ReplaceAllString(stripped, " "))
	if len(stripped) > models.MaxSummaryLen {
		stripped = stripped[:models.MaxSummaryLen]
	}
	return stripped
}

// extractImageURL tries, in fixed order: enclosure (image MIME), iTunes
// image, top-level image, media:thumbnail, first media:content. Each
// attempt is an explicit, enumerated field lookup, never a dynamic scan
// (§9: "duck-typed feed fields").
func extractImageURL(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if item.ITunesExt != nil && item.ITunesExt.Image != "" {
		return item.ITunesExt.Image
	}
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if url := firstMediaExtensionURL(item, "thumbnail"); url != "" {
		return url
	}
	if url := firstMediaExtensionURL(item, "content"); url != "" {
		return url
	}
	return ""
}

func firstMediaExtensionURL(item *gofeed.Item, field string) string {
	media, ok := item.Extensions["media"]
	if !ok {
		return ""
	}
	exts, ok := media[field]
	if !ok || len(exts) == 0 {
		return ""
	}
	if url, ok := exts[0].Attrs["url"]; ok {
		return url
	}
	return ""
}
