package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/datastore"
	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/aleister1102/maftyintel/internal/sources"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/semaphore"
)

// PageMonitor detects content changes in the non-syndicated reference pages.
// It runs independently of the feed scan cycle; a mutex serializes its own
// check runs and its writes to the page-hash document.
type PageMonitor struct {
	cfg     *config.MonitorConfig
	store   *datastore.JSONStore
	checker *PageChecker
	logger  zerolog.Logger

	mu sync.Mutex

	// prevTexts retains the last normalized text per URL for the lifetime
	// of the process, so changes can carry a diff summary. Only hashes are
	// persisted; after a restart the first change has no summary.
	textMu    sync.Mutex
	prevTexts map[string]string
}

// NewPageMonitor creates a new PageMonitor.
func NewPageMonitor(cfg *config.MonitorConfig, store *datastore.JSONStore, httpClient *http.Client, logger zerolog.Logger) *PageMonitor {
	componentLogger := logger.With().Str("component", "PageMonitor").Logger()
	return &PageMonitor{
		cfg:       cfg,
		store:     store,
		checker:   NewPageChecker(httpClient, componentLogger, cfg),
		logger:    componentLogger,
		prevTexts: make(map[string]string),
	}
}

// CheckPages checks every given page against the passed-in hash state and
// returns the detected changes plus the updated state. The first observation
// of a page stores its hash as baseline and reports no change. Per-page
// failures are logged and leave that page's state untouched.
func (pm *PageMonitor) CheckPages(ctx context.Context, urls []string, lastHashes map[string]string) ([]models.PageChange, map[string]string) {
	newHashes := make(map[string]string, len(lastHashes))
	for url, hash := range lastHashes {
		newHashes[url] = hash
	}
	if len(urls) == 0 {
		return nil, newHashes
	}

	return pm.applySnapshots(pm.checkAll(ctx, urls), lastHashes, newHashes)
}

// applySnapshots folds fresh page snapshots into the hash state and collects
// the detected changes.
func (pm *PageMonitor) applySnapshots(snapshots []*PageSnapshot, lastHashes, newHashes map[string]string) ([]models.PageChange, map[string]string) {
	var changes []models.PageChange
	for _, snap := range snapshots {
		lastHash, known := lastHashes[snap.URL]

		if !known || lastHash == "" {
			newHashes[snap.URL] = snap.Hash
			pm.rememberText(snap.URL, snap.Text)
			pm.logger.Info().Str("url", snap.URL).Msg("Initialized baseline hash")
			continue
		}

		if snap.Hash == lastHash {
			pm.rememberText(snap.URL, snap.Text)
			continue
		}

		change := models.PageChange{
			Title:       snap.Title,
			URL:         snap.URL,
			Note:        "Official site content has changed. Please check for new announcements.",
			DiffSummary: pm.diffSummary(snap.URL, snap.Text),
		}
		changes = append(changes, change)
		newHashes[snap.URL] = snap.Hash
		pm.rememberText(snap.URL, snap.Text)
		pm.logger.Info().Str("url", snap.URL).Msg("Change detected")
	}

	return changes, newHashes
}

// RunCheckOnce loads the reference-page list and the persisted hash state,
// checks all pages, persists the updated state, and returns the changes.
func (pm *PageMonitor) RunCheckOnce(ctx context.Context) []models.PageChange {
	if !pm.cfg.Enabled {
		return nil
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	registry := sources.Normalize(pm.store.LoadRaw(datastore.DocSources), pm.logger)
	if len(registry.ReferencePages) == 0 {
		return nil
	}

	lastHashes := make(map[string]string)
	_ = pm.store.LoadInto(datastore.DocPageHashes, &lastHashes)

	changes, newHashes := pm.CheckPages(ctx, registry.ReferencePages, lastHashes)

	if err := pm.store.Save(datastore.DocPageHashes, newHashes); err != nil {
		pm.logger.Error().Err(err).Msg("Failed to persist page hashes")
	}

	return changes
}

// checkAll fetches all pages with a bounded fan-out and returns the
// successful snapshots in completion order.
func (pm *PageMonitor) checkAll(ctx context.Context, urls []string) []*PageSnapshot {
	sem := semaphore.NewWeighted(int64(pm.cfg.MaxConcurrentChecks))
	results := make(chan *PageSnapshot, len(urls))

	var wg sync.WaitGroup
	for _, pageURL := range urls {
		wg.Add(1)
		go func(pageURL string) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			snap, err := pm.checker.CheckPage(ctx, pageURL)
			if err != nil {
				pm.logger.Warn().Err(err).Str("url", pageURL).Msg("Page check failed")
				return
			}
			results <- snap
		}(pageURL)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var snapshots []*PageSnapshot
	for snap := range results {
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

func (pm *PageMonitor) rememberText(url, text string) {
	pm.textMu.Lock()
	defer pm.textMu.Unlock()
	pm.prevTexts[url] = text
}

// diffSummary produces a short character-level delta against the previously
// observed text, or an empty string when none was retained.
func (pm *PageMonitor) diffSummary(url, newText string) string {
	pm.textMu.Lock()
	oldText, ok := pm.prevTexts[url]
	pm.textMu.Unlock()
	if !ok || oldText == "" {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)

	added, removed := 0, 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len([]rune(d.Text))
		case diffmatchpatch.DiffDelete:
			removed += len([]rune(d.Text))
		}
	}

	if added == 0 && removed == 0 {
		return ""
	}
	return fmt.Sprintf("Δ +%d / -%d characters", added, removed)
}
