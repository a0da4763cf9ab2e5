package models

// DestinationConfig describes one delivery destination (a guild, in Discord
// terms): where items go and which topic filters the destination opted into.
// It is created and mutated by the admin surface only; the scan pipeline
// treats it as read-only.
type DestinationConfig struct {
	ChannelID  int64    `json:"channel_id"`
	WebhookURL string   `json:"webhook_url,omitempty"`
	Filters    []string `json:"filters"`
	Language   string   `json:"language,omitempty"`
}

// Destinations maps a destination group identifier to its configuration.
type Destinations map[string]DestinationConfig

// HasDeliverableDestination reports whether at least one destination has a
// delivery channel configured. A cycle with nothing to deliver to is skipped
// before any fetches happen.
func (d Destinations) HasDeliverableDestination() bool {
	for _, dest := range d {
		if dest.Deliverable() {
			return true
		}
	}
	return false
}

// Deliverable reports whether the destination can receive messages at all.
func (dc DestinationConfig) Deliverable() bool {
	return dc.WebhookURL != "" || dc.ChannelID != 0
}
