package scanner

import (
	"sync"
	"time"
)

// RunStats tracks running counters across scan cycles. It is an explicit
// dependency of the Scanner rather than process-global state, so independent
// instances (and tests) keep independent counters.
type RunStats struct {
	mu             sync.Mutex
	scansCompleted int
	itemsDelivered int
	cacheHits      int
	lastScanTime   time.Time
}

// RunStatsSnapshot is a point-in-time copy of the counters.
type RunStatsSnapshot struct {
	ScansCompleted int
	ItemsDelivered int
	CacheHits      int
	LastScanTime   time.Time
}

// NewRunStats creates zeroed counters.
func NewRunStats() *RunStats {
	return &RunStats{}
}

// RecordCycle folds one completed cycle into the counters.
func (rs *RunStats) RecordCycle(delivered, cacheHits int) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.scansCompleted++
	rs.itemsDelivered += delivered
	rs.cacheHits += cacheHits
	rs.lastScanTime = time.Now()
}

// Snapshot returns a copy of the counters.
func (rs *RunStats) Snapshot() RunStatsSnapshot {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return RunStatsSnapshot{
		ScansCompleted: rs.scansCompleted,
		ItemsDelivered: rs.itemsDelivered,
		CacheHits:      rs.cacheHits,
		LastScanTime:   rs.lastScanTime,
	}
}
