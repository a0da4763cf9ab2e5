package notifier

import (
	"net/url"
	"time"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/filter"
	"github.com/aleister1102/maftyintel/internal/models"
)

// Discord enforces these caps on embed fields.
const (
	maxEmbedTitleLength       = 256
	maxEmbedDescriptionLength = 2000
)

// BuildItemPayload formats one feed item as a Discord embed payload.
func BuildItemPayload(cfg config.NotificationConfig, item models.FeedItem) DiscordMessagePayload {
	title := truncateRunes(filter.StripMarkup(item.Title), maxEmbedTitleLength)
	description := truncateRunes(filter.StripMarkup(item.Summary), maxEmbedDescriptionLength)

	embed := DiscordEmbed{
		Title:       title,
		Description: description,
		URL:         item.Link,
		Color:       cfg.EmbedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Author:      &DiscordEmbedAuthor{Name: cfg.BotName},
	}

	if domain := sourceDomain(item.Link); domain != "" {
		embed.Footer = &DiscordEmbedFooter{Text: "Source: " + domain}
	}

	if item.ThumbnailURL != "" {
		embed.Thumbnail = &DiscordEmbedThumbnail{URL: item.ThumbnailURL}
	}

	return DiscordMessagePayload{
		Username: cfg.BotName,
		Embeds:   []DiscordEmbed{embed},
	}
}

// BuildChangePayload formats one page change as a Discord embed payload.
func BuildChangePayload(cfg config.NotificationConfig, change models.PageChange) DiscordMessagePayload {
	description := change.Note
	if change.DiffSummary != "" {
		description += "\n" + change.DiffSummary
	}

	embed := DiscordEmbed{
		Title:       truncateRunes("🔄 Update: "+change.Title, maxEmbedTitleLength),
		Description: truncateRunes(description, maxEmbedDescriptionLength),
		URL:         change.URL,
		Color:       cfg.EmbedColor,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}

	return DiscordMessagePayload{
		Username: cfg.BotName,
		Embeds:   []DiscordEmbed{embed},
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func sourceDomain(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
