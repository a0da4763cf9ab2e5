package config

import "time"

// ScannerConfig defines configuration for the feed scan orchestrator
type ScannerConfig struct {
	MaxConcurrentFetches int           `json:"max_concurrent_fetches,omitempty" yaml:"max_concurrent_fetches,omitempty" validate:"omitempty,min=1"`
	HTTPTimeoutSeconds   int           `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"omitempty,min=1"`
	HTTPTimeout          time.Duration `json:"-" yaml:"-"`
	UserAgent            string        `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	// HistoryLimit bounds the dispatch ledger; oldest entries are evicted
	// beyond this size.
	HistoryLimit int `json:"history_limit,omitempty" yaml:"history_limit,omitempty" validate:"omitempty,min=1"`
	// DeliveryPaceSeconds spaces out consecutive deliveries to respect
	// platform rate limits.
	DeliveryPaceSeconds float64       `json:"delivery_pace_seconds,omitempty" yaml:"delivery_pace_seconds,omitempty" validate:"omitempty,min=0"`
	DeliveryPace        time.Duration `json:"-" yaml:"-"`
	MaxSummaryLength    int           `json:"max_summary_length,omitempty" yaml:"max_summary_length,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultScannerConfig creates default scanner configuration
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		MaxConcurrentFetches: 5,
		HTTPTimeoutSeconds:   25,
		HTTPTimeout:          25 * time.Second,
		UserAgent:            "Mozilla/5.0 MaftyIntel/2.1",
		HistoryLimit:         2000,
		DeliveryPaceSeconds:  1,
		DeliveryPace:         time.Second,
		MaxSummaryLength:     2000,
	}
}

// Normalize derives the duration fields from their second-granularity
// counterparts after the config file has been parsed.
func (sc *ScannerConfig) Normalize() {
	if sc.HTTPTimeoutSeconds > 0 {
		sc.HTTPTimeout = time.Duration(sc.HTTPTimeoutSeconds) * time.Second
	}
	if sc.DeliveryPaceSeconds > 0 {
		sc.DeliveryPace = time.Duration(sc.DeliveryPaceSeconds * float64(time.Second))
	}
}
