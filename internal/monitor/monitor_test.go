package monitor

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/datastore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T) (*PageMonitor, *datastore.JSONStore) {
	t.Helper()
	base := t.TempDir()
	store := datastore.NewJSONStore(base, filepath.Join(base, "backups"), zerolog.Nop())
	cfg := config.NewDefaultMonitorConfig()
	pm := NewPageMonitor(&cfg, store, &http.Client{Timeout: 5 * time.Second}, zerolog.Nop())
	return pm, store
}

func newTestChecker() *PageChecker {
	cfg := config.NewDefaultMonitorConfig()
	return NewPageChecker(&http.Client{Timeout: 5 * time.Second}, zerolog.Nop(), &cfg)
}

func TestReduce_StripsBoilerplateBeforeHashing(t *testing.T) {
	pc := newTestChecker()

	pageV1 := []byte(`<html><head><title>Official Site</title>
		<script>var tracking = "a";</script></head>
		<body><nav>menu</nav><p>Episode 5 airs in June.</p><footer>contact</footer></body></html>`)
	pageV2 := []byte(`<html><head><title>Official Site</title>
		<script>var tracking = "b";</script></head>
		<body><nav>different menu</nav><p>Episode 5 airs in June.</p><footer>new contact</footer></body></html>`)

	snapV1, err := pc.reduce("https://example.com/news", pageV1)
	require.NoError(t, err)
	snapV2, err := pc.reduce("https://example.com/news", pageV2)
	require.NoError(t, err)

	// Script, nav, and footer churn must not affect the content hash.
	assert.Equal(t, snapV1.Hash, snapV2.Hash)
	assert.Equal(t, "Official Site", snapV1.Title)
	assert.Contains(t, snapV1.Text, "Episode 5 airs in June.")
	assert.NotContains(t, snapV1.Text, "tracking")
	assert.NotContains(t, snapV1.Text, "menu")
}

func TestReduce_ContentChangeChangesHash(t *testing.T) {
	pc := newTestChecker()

	snapV1, err := pc.reduce("https://example.com/news", []byte(`<html><body><p>Episode 5 airs in June.</p></body></html>`))
	require.NoError(t, err)
	snapV2, err := pc.reduce("https://example.com/news", []byte(`<html><body><p>Episode 6 airs in July.</p></body></html>`))
	require.NoError(t, err)

	assert.NotEqual(t, snapV1.Hash, snapV2.Hash)
}

func TestReduce_MissingTitle(t *testing.T) {
	pc := newTestChecker()
	snap, err := pc.reduce("https://example.com", []byte(`<html><body>text</body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "No Title", snap.Title)
}

func TestCheckPage_RejectsPrivateTargets(t *testing.T) {
	pc := newTestChecker()
	for _, target := range []string{
		"http://127.0.0.1:8080/admin",
		"http://192.168.1.1/",
		"http://localhost/",
		"file:///etc/passwd",
	} {
		_, err := pc.CheckPage(context.Background(), target)
		assert.Error(t, err, target)
	}
}

func TestApplySnapshots_FirstObservationIsBaseline(t *testing.T) {
	pm, _ := newTestMonitor(t)

	snapshots := []*PageSnapshot{{URL: "https://example.com/news", Title: "News", Hash: "h1", Text: "v1"}}
	changes, newHashes := pm.applySnapshots(snapshots, map[string]string{}, map[string]string{})

	assert.Empty(t, changes)
	assert.Equal(t, "h1", newHashes["https://example.com/news"])
}

func TestApplySnapshots_ChangeDetectedAgainstBaseline(t *testing.T) {
	pm, _ := newTestMonitor(t)
	url := "https://example.com/news"

	// Baseline pass.
	_, hashes := pm.applySnapshots(
		[]*PageSnapshot{{URL: url, Title: "News", Hash: "h1", Text: "old content"}},
		map[string]string{}, map[string]string{})

	// Unchanged pass.
	changes, hashes := pm.applySnapshots(
		[]*PageSnapshot{{URL: url, Title: "News", Hash: "h1", Text: "old content"}},
		hashes, copyHashes(hashes))
	assert.Empty(t, changes)

	// Changed pass.
	changes, hashes = pm.applySnapshots(
		[]*PageSnapshot{{URL: url, Title: "News", Hash: "h2", Text: "brand new content"}},
		hashes, copyHashes(hashes))
	require.Len(t, changes, 1)
	assert.Equal(t, url, changes[0].URL)
	assert.Equal(t, "News", changes[0].Title)
	assert.NotEmpty(t, changes[0].DiffSummary)
	assert.Equal(t, "h2", hashes[url])
}

func TestApplySnapshots_UnreachedPagesKeepTheirState(t *testing.T) {
	pm, _ := newTestMonitor(t)

	last := map[string]string{
		"https://example.com/down": "h-down",
		"https://example.com/up":   "h1",
	}
	// Only one page produced a snapshot this pass.
	changes, newHashes := pm.applySnapshots(
		[]*PageSnapshot{{URL: "https://example.com/up", Hash: "h1", Text: "t"}},
		last, copyHashes(last))

	assert.Empty(t, changes)
	assert.Equal(t, "h-down", newHashes["https://example.com/down"])
}

func TestRunCheckOnce_DisabledMonitorDoesNothing(t *testing.T) {
	pm, store := newTestMonitor(t)
	pm.cfg.Enabled = false
	require.NoError(t, store.Save(datastore.DocSources, map[string]any{
		"official_sites_reference_(not_rss)": []string{"https://example.com/news"},
	}))

	assert.Nil(t, pm.RunCheckOnce(context.Background()))
}

func TestRunCheckOnce_NoReferencePages(t *testing.T) {
	pm, store := newTestMonitor(t)
	require.NoError(t, store.Save(datastore.DocSources, map[string]any{
		"rss_feeds": []string{"https://example.com/feed.xml"},
	}))

	assert.Nil(t, pm.RunCheckOnce(context.Background()))
}

func copyHashes(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
