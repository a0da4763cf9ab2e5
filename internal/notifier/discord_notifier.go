package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/rs/zerolog"
)

// DiscordNotifier delivers message payloads to Discord webhooks. Failures
// are isolated per call: one rejected delivery never affects another.
type DiscordNotifier struct {
	cfg        config.NotificationConfig
	logger     zerolog.Logger
	httpClient *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(cfg config.NotificationConfig, logger zerolog.Logger, httpClient *http.Client) *DiscordNotifier {
	componentLogger := logger.With().Str("component", "DiscordNotifier").Logger()

	if httpClient == nil {
		componentLogger.Warn().Msg("HTTP client is nil, using default with 20s timeout")
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}

	return &DiscordNotifier{
		cfg:        cfg,
		logger:     componentLogger,
		httpClient: httpClient,
	}
}

// DeliverItem sends a feed item to one destination. The destination must
// have a webhook configured; a destination without one is a caller bug and
// is reported as a validation error.
func (dn *DiscordNotifier) DeliverItem(ctx context.Context, dest models.DestinationConfig, item models.FeedItem) error {
	if dest.WebhookURL == "" {
		return errorwrapper.NewValidationError("webhook_url", dest.WebhookURL, "destination has no webhook configured")
	}
	payload := BuildItemPayload(dn.cfg, item)
	return dn.send(ctx, dest.WebhookURL, payload)
}

// NotifyChanges sends page-change notifications to the monitor webhook.
// Per-change failures are logged and do not stop the remaining changes.
func (dn *DiscordNotifier) NotifyChanges(ctx context.Context, changes []models.PageChange) {
	if dn.cfg.MonitorWebhookURL == "" {
		if len(changes) > 0 {
			dn.logger.Warn().Int("changes", len(changes)).Msg("Monitor webhook not configured, dropping change notifications")
		}
		return
	}
	for _, change := range changes {
		payload := BuildChangePayload(dn.cfg, change)
		if err := dn.send(ctx, dn.cfg.MonitorWebhookURL, payload); err != nil {
			dn.logger.Error().Err(err).Str("url", change.URL).Msg("Failed to send change notification")
		}
	}
}

func (dn *DiscordNotifier) send(ctx context.Context, webhookURL string, payload DiscordMessagePayload) error {
	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return errorwrapper.WrapError(err, "invalid webhook URL")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := dn.httpClient.Do(req)
	if err != nil {
		return errorwrapper.NewNetworkError(webhookURL, "webhook request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, string(respBody), webhookURL)
	}

	dn.logger.Debug().Int("status", resp.StatusCode).Msg("Webhook delivered")
	return nil
}
