package config

import "time"

// MonitorConfig defines configuration for the page-change monitor
type MonitorConfig struct {
	Enabled              bool          `json:"enabled" yaml:"enabled"`
	HTTPTimeoutSeconds   int           `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	HTTPTimeout          time.Duration `json:"-" yaml:"-"`
	MaxConcurrentChecks  int           `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" validate:"omitempty,min=1"`
	MaxContentSize       int           `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"omitempty,min=1"`
	UserAgent            string        `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	// IgnoreTags and IgnoreSelectors name boilerplate removed from pages
	// before hashing, so cosmetic churn does not register as a change.
	IgnoreTags      []string `json:"ignore_tags,omitempty" yaml:"ignore_tags,omitempty"`
	IgnoreSelectors []string `json:"ignore_selectors,omitempty" yaml:"ignore_selectors,omitempty"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:             true,
		HTTPTimeoutSeconds:  30,
		HTTPTimeout:         30 * time.Second,
		MaxConcurrentChecks: 5,
		MaxContentSize:      5 * 1024 * 1024,
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		IgnoreTags:          []string{"script", "style", "noscript", "iframe", "nav", "footer", "header"},
		IgnoreSelectors:     []string{".ads", ".banner", ".cookie", "#cookie-banner", ".social-share"},
	}
}

// Normalize derives the duration fields after parsing.
func (mc *MonitorConfig) Normalize() {
	if mc.HTTPTimeoutSeconds > 0 {
		mc.HTTPTimeout = time.Duration(mc.HTTPTimeoutSeconds) * time.Second
	}
}
