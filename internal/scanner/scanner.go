package scanner

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/datastore"
	"github.com/aleister1102/maftyintel/internal/dedup"
	"github.com/aleister1102/maftyintel/internal/filter"
	"github.com/aleister1102/maftyintel/internal/httpcache"
	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/aleister1102/maftyintel/internal/sources"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DeliverySink is the outbound boundary: something that can deliver one feed
// item to one destination. Failures are isolated per call.
type DeliverySink interface {
	DeliverItem(ctx context.Context, dest models.DestinationConfig, item models.FeedItem) error
}

// Scanner runs the scan-and-dispatch pipeline: fetch every registered feed
// under a bounded fan-out, evaluate items against the filter engine and the
// dispatch ledger, deliver matches, and persist the updated ledgers.
//
// A mutex makes cycles single-flight: a scan requested while one is running
// is dropped, not queued — the next scheduled cycle catches up.
type Scanner struct {
	cfg     *config.ScannerConfig
	store   *datastore.JSONStore
	engine  *filter.Engine
	rules   *filter.SourceRules
	fetcher *FeedFetcher
	sink    DeliverySink
	stats   *RunStats
	logger  zerolog.Logger

	scanMu sync.Mutex
}

// NewScanner creates a new Scanner.
func NewScanner(
	cfg *config.ScannerConfig,
	store *datastore.JSONStore,
	engine *filter.Engine,
	rules *filter.SourceRules,
	httpClient *http.Client,
	sink DeliverySink,
	stats *RunStats,
	logger zerolog.Logger,
) *Scanner {
	componentLogger := logger.With().Str("component", "Scanner").Logger()
	return &Scanner{
		cfg:     cfg,
		store:   store,
		engine:  engine,
		rules:   rules,
		fetcher: NewFeedFetcher(httpClient, componentLogger, cfg),
		sink:    sink,
		stats:   stats,
		logger:  componentLogger,
	}
}

// Stats exposes the running counters.
func (s *Scanner) Stats() RunStatsSnapshot {
	return s.stats.Snapshot()
}

// fetchOutcome is what one fetch goroutine hands back to the cycle loop.
// Ledger updates happen only on the collecting side, so the cache ledger
// needs no locking.
type fetchOutcome struct {
	url         string
	items       []models.FeedItem
	header      http.Header
	notModified bool
	failed      bool
}

// RunScanOnce executes one complete scan cycle. It is safe to call from any
// trigger (timer, manual command); a call that finds a cycle already running
// returns immediately without fetching anything. The cycle never propagates
// an error past its boundary — partial failures are logged and isolated.
func (s *Scanner) RunScanOnce(ctx context.Context, trigger string) {
	if !s.scanMu.TryLock() {
		s.logger.Info().Str("trigger", trigger).Msg("Scan skipped, another cycle is already running")
		return
	}
	defer s.scanMu.Unlock()

	s.logger.Info().Str("trigger", trigger).Msg("Starting intelligence scan")

	dests := s.loadDestinations()
	if !dests.HasDeliverableDestination() {
		s.logger.Warn().Msg("No destination has a delivery channel configured, skipping cycle")
		return
	}

	registry := sources.Normalize(s.store.LoadRaw(datastore.DocSources), s.logger)
	if len(registry.FeedURLs) == 0 {
		s.logger.Warn().Msg("No valid feed URLs registered, skipping cycle")
		return
	}

	ledger := s.loadHistory()
	cache := httpcache.NewLedger()
	_ = s.store.LoadInto(datastore.DocHTTPCache, &cache)

	outcomes := s.fetchAll(ctx, registry.FeedURLs, cache)

	delivered := 0
	cacheHits := 0
	limiter := rate.NewLimiter(rate.Every(s.cfg.DeliveryPace), 1)

	for outcome := range outcomes {
		if outcome.failed {
			continue
		}
		if outcome.notModified {
			cacheHits++
			continue
		}
		cache.Update(outcome.url, outcome.header)

		for _, item := range outcome.items {
			if item.Link == "" || ledger.Contains(item.Link) {
				continue
			}

			sourceID := filter.SourceIDFromURL(outcome.url)
			if !s.rules.TitleAllowed(sourceID, item.Title) {
				continue
			}

			if s.dispatchItem(ctx, dests, item, limiter) {
				ledger.Add(item.Link)
				delivered++
			}
		}
	}

	if err := s.store.Save(datastore.DocHistory, ledger.Snapshot()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist dispatch ledger")
	}
	if err := s.store.Save(datastore.DocHTTPCache, cache); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist HTTP cache ledger")
	}

	s.stats.RecordCycle(delivered, cacheHits)
	s.logger.Info().
		Str("trigger", trigger).
		Int("delivered", delivered).
		Int("cache_hits", cacheHits).
		Int("resources", len(registry.FeedURLs)).
		Msg("Scan completed")
}

// fetchAll fans out over all feed URLs with at most MaxConcurrentFetches in
// flight. Parsing runs inside the fetch goroutines, off the dispatch loop.
// The returned channel yields outcomes in completion order and is closed
// once every fetch finished.
func (s *Scanner) fetchAll(ctx context.Context, urls []string, cache httpcache.Ledger) <-chan fetchOutcome {
	sem := semaphore.NewWeighted(int64(s.cfg.MaxConcurrentFetches))
	outcomes := make(chan fetchOutcome, len(urls))

	var wg sync.WaitGroup
	for _, feedURL := range urls {
		conditional := cache.HeadersFor(feedURL)

		wg.Add(1)
		go func(feedURL string, conditional map[string]string) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes <- fetchOutcome{url: feedURL, failed: true}
				return
			}
			defer sem.Release(1)

			outcomes <- s.fetchOne(ctx, feedURL, conditional)
		}(feedURL, conditional)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	return outcomes
}

// fetchOne fetches and parses a single feed. Transport and parse failures
// make the resource yield zero items for this cycle; they never abort the
// cycle.
func (s *Scanner) fetchOne(ctx context.Context, feedURL string, conditional map[string]string) fetchOutcome {
	result, err := s.fetcher.FetchFeed(ctx, FetchFeedInput{URL: feedURL, ConditionalHeaders: conditional})
	if errors.Is(err, ErrNotModified) {
		return fetchOutcome{url: feedURL, notModified: true}
	}
	if err != nil {
		s.logger.Error().Err(err).Str("url", feedURL).Msg("Failed to fetch feed")
		return fetchOutcome{url: feedURL, failed: true}
	}

	parsed, err := gofeed.NewParser().ParseString(string(result.Body))
	if err != nil || parsed == nil {
		s.logger.Error().Err(err).Str("url", feedURL).Msg("Failed to parse feed")
		return fetchOutcome{url: feedURL, header: result.Header}
	}

	items := make([]models.FeedItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		items = append(items, models.FeedItem{
			SourceURL:    feedURL,
			Link:         entry.Link,
			Title:        entry.Title,
			Summary:      entrySummary(entry),
			ThumbnailURL: entryThumbnail(entry),
		})
	}

	return fetchOutcome{url: feedURL, items: items, header: result.Header}
}

// dispatchItem offers one item to every deliverable destination, in
// registration order, and reports whether at least one delivery succeeded.
// Delivery failures are isolated per destination.
func (s *Scanner) dispatchItem(ctx context.Context, dests models.Destinations, item models.FeedItem, limiter *rate.Limiter) bool {
	deliveredAnywhere := false

	for _, destID := range sortedDestinationIDs(dests) {
		dest := dests[destID]
		if !dest.Deliverable() {
			continue
		}
		if !s.engine.Matches(dest, item.Title, item.Summary) {
			continue
		}
		if dest.WebhookURL == "" {
			s.logger.Warn().Str("destination", destID).Msg("Destination channel not resolvable, skipping")
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return deliveredAnywhere
		}

		if err := s.sink.DeliverItem(ctx, dest, item); err != nil {
			s.logger.Error().Err(err).Str("destination", destID).Str("link", item.Link).Msg("Delivery failed")
			continue
		}
		deliveredAnywhere = true
	}

	return deliveredAnywhere
}

func (s *Scanner) loadDestinations() models.Destinations {
	dests := make(models.Destinations)
	_ = s.store.LoadInto(datastore.DocDestinations, &dests)
	return dests
}

// loadHistory reads the persisted history list, keeping only string entries
// so a hand-edited document cannot poison the ledger.
func (s *Scanner) loadHistory() *dedup.Ledger {
	var raw []any
	_ = s.store.LoadInto(datastore.DocHistory, &raw)

	entries := make([]string, 0, len(raw))
	for _, entry := range raw {
		if link, ok := entry.(string); ok {
			entries = append(entries, link)
		}
	}
	return dedup.FromEntries(entries, s.cfg.HistoryLimit)
}

func sortedDestinationIDs(dests models.Destinations) []string {
	ids := make([]string, 0, len(dests))
	for id := range dests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func entrySummary(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

// entryThumbnail extracts a thumbnail URL from the item image or the media
// RSS extension, which is where YouTube feeds put theirs.
func entryThumbnail(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, thumb := range entry.Extensions["media"]["thumbnail"] {
		if u := thumb.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}
