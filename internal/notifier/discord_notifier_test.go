package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookServer(t *testing.T, status int, received *[]DiscordMessagePayload) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload DiscordMessagePayload
		require.NoError(t, json.Unmarshal(body, &payload))
		*received = append(*received, payload)

		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestNotifier(cfg config.NotificationConfig) *DiscordNotifier {
	return NewDiscordNotifier(cfg, zerolog.Nop(), &http.Client{Timeout: 5 * time.Second})
}

func TestDeliverItem_PostsEmbedToDestinationWebhook(t *testing.T) {
	var received []DiscordMessagePayload
	server := newWebhookServer(t, http.StatusNoContent, &received)

	dn := newTestNotifier(config.NewDefaultNotificationConfig())
	dest := models.DestinationConfig{WebhookURL: server.URL, Filters: []string{"all"}}
	item := models.FeedItem{Link: "https://example.com/a", Title: "Gundam news"}

	require.NoError(t, dn.DeliverItem(context.Background(), dest, item))
	require.Len(t, received, 1)
	require.Len(t, received[0].Embeds, 1)
	assert.Equal(t, "Gundam news", received[0].Embeds[0].Title)
}

func TestDeliverItem_MissingWebhookIsAnError(t *testing.T) {
	dn := newTestNotifier(config.NewDefaultNotificationConfig())
	err := dn.DeliverItem(context.Background(), models.DestinationConfig{}, models.FeedItem{Link: "https://example.com/a"})
	assert.Error(t, err)
}

func TestDeliverItem_NonSuccessStatusIsAnError(t *testing.T) {
	var received []DiscordMessagePayload
	server := newWebhookServer(t, http.StatusTooManyRequests, &received)

	dn := newTestNotifier(config.NewDefaultNotificationConfig())
	dest := models.DestinationConfig{WebhookURL: server.URL}

	err := dn.DeliverItem(context.Background(), dest, models.FeedItem{Link: "https://example.com/a"})
	assert.Error(t, err)
}

func TestNotifyChanges_SendsOnePayloadPerChange(t *testing.T) {
	var received []DiscordMessagePayload
	server := newWebhookServer(t, http.StatusOK, &received)

	cfg := config.NewDefaultNotificationConfig()
	cfg.MonitorWebhookURL = server.URL
	dn := newTestNotifier(cfg)

	dn.NotifyChanges(context.Background(), []models.PageChange{
		{Title: "Site A", URL: "https://a.example.com", Note: "changed"},
		{Title: "Site B", URL: "https://b.example.com", Note: "changed"},
	})

	assert.Len(t, received, 2)
}

func TestNotifyChanges_WithoutWebhookDropsQuietly(t *testing.T) {
	dn := newTestNotifier(config.NewDefaultNotificationConfig())
	// Must not panic or block; changes are dropped with a warning.
	dn.NotifyChanges(context.Background(), []models.PageChange{
		{Title: "Site", URL: "https://example.com", Note: "changed"},
	})
}
