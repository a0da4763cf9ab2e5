package notifier

import (
	"strings"
	"testing"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildItemPayload(t *testing.T) {
	cfg := config.NewDefaultNotificationConfig()
	item := models.FeedItem{
		SourceURL:    "https://example.com/feed.xml",
		Link:         "https://example.com/articles/seed-sequel",
		Title:        "Gundam SEED <b>Freedom</b> sequel announced",
		Summary:      "<p>A new movie is in production &amp; coming soon.</p>",
		ThumbnailURL: "https://img.example.com/thumb.jpg",
	}

	payload := BuildItemPayload(cfg, item)
	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]

	assert.Equal(t, "MaftyIntel", payload.Username)
	assert.Equal(t, "Gundam SEED Freedom sequel announced", embed.Title)
	assert.Equal(t, "A new movie is in production & coming soon.", embed.Description)
	assert.Equal(t, item.Link, embed.URL)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Source: example.com", embed.Footer.Text)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, item.ThumbnailURL, embed.Thumbnail.URL)
}

func TestBuildItemPayload_TruncatesToDiscordLimits(t *testing.T) {
	cfg := config.NewDefaultNotificationConfig()
	item := models.FeedItem{
		Link:    "https://example.com/long",
		Title:   strings.Repeat("g", 500),
		Summary: strings.Repeat("s", 5000),
	}

	payload := BuildItemPayload(cfg, item)
	embed := payload.Embeds[0]
	assert.LessOrEqual(t, len([]rune(embed.Title)), 256)
	assert.LessOrEqual(t, len([]rune(embed.Description)), 2000)
	assert.True(t, strings.HasSuffix(embed.Title, "…"))
}

func TestBuildChangePayload(t *testing.T) {
	cfg := config.NewDefaultNotificationConfig()
	change := models.PageChange{
		Title:       "Official Site",
		URL:         "https://example.com/news",
		Note:        "Official site content has changed. Please check for new announcements.",
		DiffSummary: "Δ +42 / -7 characters",
	}

	payload := BuildChangePayload(cfg, change)
	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]

	assert.Equal(t, "🔄 Update: Official Site", embed.Title)
	assert.Contains(t, embed.Description, change.Note)
	assert.Contains(t, embed.Description, change.DiffSummary)
	assert.Equal(t, change.URL, embed.URL)
}

func TestBuildChangePayload_NoDiffSummary(t *testing.T) {
	cfg := config.NewDefaultNotificationConfig()
	change := models.PageChange{Title: "Site", URL: "https://example.com", Note: "changed"}

	payload := BuildChangePayload(cfg, change)
	assert.Equal(t, "changed", payload.Embeds[0].Description)
}
