package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/datastore"
	"github.com/aleister1102/maftyintel/internal/filter"
	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Gundam SEED Freedom sequel announced</title>
      <link>https://example.com/articles/seed-sequel</link>
      <description>A new gundam movie is in production.</description>
    </item>
    <item>
      <title>Unrelated robot vacuum review</title>
      <link>https://example.com/articles/vacuum</link>
      <description>Cleans floors.</description>
    </item>
  </channel>
</rss>`

// recordingSink captures deliveries; optionally fails for selected webhooks.
type recordingSink struct {
	mu        sync.Mutex
	delivered []models.FeedItem
	failFor   map[string]bool
}

func (rs *recordingSink) DeliverItem(_ context.Context, dest models.DestinationConfig, item models.FeedItem) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.failFor[dest.WebhookURL] {
		return fmt.Errorf("simulated delivery failure")
	}
	rs.delivered = append(rs.delivered, item)
	return nil
}

func (rs *recordingSink) deliveredLinks() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	links := make([]string, 0, len(rs.delivered))
	for _, item := range rs.delivered {
		links = append(links, item.Link)
	}
	return links
}

func testScannerConfig() *config.ScannerConfig {
	cfg := config.NewDefaultScannerConfig()
	cfg.DeliveryPace = time.Millisecond
	return &cfg
}

func newTestScanner(t *testing.T, sink DeliverySink) (*Scanner, *datastore.JSONStore) {
	t.Helper()
	base := t.TempDir()
	store := datastore.NewJSONStore(base, filepath.Join(base, "backups"), zerolog.Nop())
	s := NewScanner(
		testScannerConfig(),
		store,
		filter.NewEngine(zerolog.Nop()),
		filter.NewSourceRules(nil),
		&http.Client{Timeout: 5 * time.Second},
		sink,
		NewRunStats(),
		zerolog.Nop(),
	)
	return s, store
}

func seedDestinations(t *testing.T, store *datastore.JSONStore, dests models.Destinations) {
	t.Helper()
	require.NoError(t, store.Save(datastore.DocDestinations, dests))
}

func seedSources(t *testing.T, store *datastore.JSONStore, urls ...string) {
	t.Helper()
	require.NoError(t, store.Save(datastore.DocSources, map[string]any{"rss_feeds": urls}))
}

// newCountingFeedServer serves the test feed and honors If-None-Match.
func newCountingFeedServer(t *testing.T, fetches *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		if r.Header.Get("If-None-Match") == `"feed-v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"feed-v1"`)
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testFeedXML)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunScanOnce_DeliversMatchingItemsExactlyOnce(t *testing.T) {
	var fetches atomic.Int32
	server := newCountingFeedServer(t, &fetches)

	sink := &recordingSink{}
	s, store := newTestScanner(t, sink)
	seedDestinations(t, store, models.Destinations{
		"guild-1": {WebhookURL: "https://discord.example/hook1", Filters: []string{"all"}},
	})
	seedSources(t, store, server.URL)

	s.RunScanOnce(context.Background(), "test")

	// Only the franchise-relevant item is delivered; the vacuum review is
	// filtered out.
	assert.Equal(t, []string{"https://example.com/articles/seed-sequel"}, sink.deliveredLinks())
	assert.Equal(t, int32(1), fetches.Load())

	snapshot := s.Stats()
	assert.Equal(t, 1, snapshot.ScansCompleted)
	assert.Equal(t, 1, snapshot.ItemsDelivered)
	assert.Equal(t, 0, snapshot.CacheHits)

	// Second cycle: the server answers 304 and nothing is re-delivered.
	s.RunScanOnce(context.Background(), "test")
	assert.Equal(t, []string{"https://example.com/articles/seed-sequel"}, sink.deliveredLinks())

	snapshot = s.Stats()
	assert.Equal(t, 2, snapshot.ScansCompleted)
	assert.Equal(t, 1, snapshot.ItemsDelivered)
	assert.Equal(t, 1, snapshot.CacheHits)
}

func TestRunScanOnce_PersistsLedgers(t *testing.T) {
	var fetches atomic.Int32
	server := newCountingFeedServer(t, &fetches)

	sink := &recordingSink{}
	s, store := newTestScanner(t, sink)
	seedDestinations(t, store, models.Destinations{
		"guild-1": {WebhookURL: "https://discord.example/hook1", Filters: []string{"all"}},
	})
	seedSources(t, store, server.URL)

	s.RunScanOnce(context.Background(), "test")

	var history []string
	require.NoError(t, store.LoadInto(datastore.DocHistory, &history))
	assert.Equal(t, []string{"https://example.com/articles/seed-sequel"}, history)

	httpCache := make(map[string]map[string]string)
	require.NoError(t, store.LoadInto(datastore.DocHTTPCache, &httpCache))
	assert.Equal(t, `"feed-v1"`, httpCache[server.URL]["etag"])
}

func TestRunScanOnce_SkipsWithoutDeliverableDestination(t *testing.T) {
	var fetches atomic.Int32
	server := newCountingFeedServer(t, &fetches)

	sink := &recordingSink{}
	s, store := newTestScanner(t, sink)
	seedSources(t, store, server.URL)
	// Destinations exist but none has a delivery channel.
	seedDestinations(t, store, models.Destinations{
		"guild-1": {Filters: []string{"all"}},
	})

	s.RunScanOnce(context.Background(), "test")

	assert.Equal(t, int32(0), fetches.Load(), "no fetch may happen without a deliverable destination")
	assert.Empty(t, sink.deliveredLinks())
}

func TestRunScanOnce_DeliveryFailureDoesNotPoisonOtherDestinations(t *testing.T) {
	var fetches atomic.Int32
	server := newCountingFeedServer(t, &fetches)

	sink := &recordingSink{failFor: map[string]bool{"https://discord.example/broken": true}}
	s, store := newTestScanner(t, sink)
	seedDestinations(t, store, models.Destinations{
		"guild-a": {WebhookURL: "https://discord.example/broken", Filters: []string{"all"}},
		"guild-b": {WebhookURL: "https://discord.example/hook2", Filters: []string{"all"}},
	})
	seedSources(t, store, server.URL)

	s.RunScanOnce(context.Background(), "test")

	// The healthy destination got the item despite the broken one, and the
	// item is marked dispatched.
	assert.Equal(t, []string{"https://example.com/articles/seed-sequel"}, sink.deliveredLinks())

	var history []string
	require.NoError(t, store.LoadInto(datastore.DocHistory, &history))
	assert.Contains(t, history, "https://example.com/articles/seed-sequel")
}

func TestRunScanOnce_SecondCallDuringCycleIsDropped(t *testing.T) {
	var fetches atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		<-release
		fmt.Fprint(w, testFeedXML)
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	sink := &recordingSink{}
	s, store := newTestScanner(t, sink)
	seedDestinations(t, store, models.Destinations{
		"guild-1": {WebhookURL: "https://discord.example/hook1", Filters: []string{"all"}},
	})
	seedSources(t, store, server.URL)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		s.RunScanOnce(context.Background(), "first")
	}()

	// Wait until the first cycle is inside its fetch, then trigger again.
	require.Eventually(t, func() bool { return fetches.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	s.RunScanOnce(context.Background(), "overlapping")

	// The overlapping call returned without fetching anything.
	assert.Equal(t, int32(1), fetches.Load())

	close(release)
	<-firstDone
	assert.Equal(t, int32(1), fetches.Load())
	assert.Equal(t, 1, s.Stats().ScansCompleted)
}

func TestRunScanOnce_FetchFailureIsolatedPerResource(t *testing.T) {
	var fetches atomic.Int32
	goodServer := newCountingFeedServer(t, &fetches)
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(badServer.Close)

	sink := &recordingSink{}
	s, store := newTestScanner(t, sink)
	seedDestinations(t, store, models.Destinations{
		"guild-1": {WebhookURL: "https://discord.example/hook1", Filters: []string{"all"}},
	})
	seedSources(t, store, badServer.URL, goodServer.URL)

	s.RunScanOnce(context.Background(), "test")

	assert.Equal(t, []string{"https://example.com/articles/seed-sequel"}, sink.deliveredLinks())
}

func TestLoadHistory_DropsNonStringEntries(t *testing.T) {
	sink := &recordingSink{}
	s, store := newTestScanner(t, sink)
	require.NoError(t, store.Save(datastore.DocHistory, []any{"https://example.com/a", 42, map[string]any{"bad": true}, "https://example.com/b"}))

	ledger := s.loadHistory()
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, ledger.Snapshot())
}
