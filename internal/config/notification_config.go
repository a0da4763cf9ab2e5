package config

// NotificationConfig defines configuration for outbound Discord delivery
type NotificationConfig struct {
	// MonitorWebhookURL receives page-change notifications. Feed items are
	// delivered per destination via the webhook configured in
	// destinations.json.
	MonitorWebhookURL string `json:"monitor_webhook_url,omitempty" yaml:"monitor_webhook_url,omitempty" validate:"omitempty,url"`
	BotName           string `json:"bot_name,omitempty" yaml:"bot_name,omitempty"`
	// EmbedColor is the accent color of delivered embeds (decimal RGB).
	EmbedColor int `json:"embed_color,omitempty" yaml:"embed_color,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		BotName:    "MaftyIntel",
		EmbedColor: 0xFF0020,
	}
}
