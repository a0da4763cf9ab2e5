package config

import "time"

// SchedulerConfig defines configuration for the periodic scan loop
type SchedulerConfig struct {
	ScanIntervalMinutes int           `json:"scan_interval_minutes,omitempty" yaml:"scan_interval_minutes,omitempty" validate:"omitempty,min=1"`
	ScanInterval        time.Duration `json:"-" yaml:"-"`
	// SQLiteDBPath stores the scan-cycle history table.
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty"`
	// RunOnStart triggers an immediate cycle when the scheduler starts
	// instead of waiting for the first tick.
	RunOnStart bool `json:"run_on_start" yaml:"run_on_start"`
}

// NewDefaultSchedulerConfig creates default scheduler configuration
func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ScanIntervalMinutes: 30,
		ScanInterval:        30 * time.Minute,
		SQLiteDBPath:        "data/scheduler/cycle_history.db",
		RunOnStart:          true,
	}
}

// Normalize derives the duration fields after parsing.
func (sc *SchedulerConfig) Normalize() {
	if sc.ScanIntervalMinutes > 0 {
		sc.ScanInterval = time.Duration(sc.ScanIntervalMinutes) * time.Minute
	}
}
