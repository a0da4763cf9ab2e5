package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/models"
	"github.com/aleister1102/maftyintel/internal/monitor"
	"github.com/aleister1102/maftyintel/internal/scanner"
	"github.com/rs/zerolog"
)

// ChangeNotifier receives the page changes a monitor pass detected.
type ChangeNotifier interface {
	NotifyChanges(ctx context.Context, changes []models.PageChange)
}

// Scheduler drives the periodic scan loop: every tick it runs a feed scan
// cycle followed by a reference-page check, and records the cycle to the
// history database.
type Scheduler struct {
	cfg      config.SchedulerConfig
	scan     *scanner.Scanner
	pages    *monitor.PageMonitor
	notifier ChangeNotifier
	db       *DB
	logger   zerolog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a new Scheduler. db may be nil when cycle history is
// disabled.
func NewScheduler(
	cfg config.SchedulerConfig,
	scan *scanner.Scanner,
	pages *monitor.PageMonitor,
	notifier ChangeNotifier,
	db *DB,
	logger zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		scan:     scan,
		pages:    pages,
		notifier: notifier,
		db:       db,
		logger:   logger.With().Str("component", "Scheduler").Logger(),
	}
}

// Start launches the scan loop in a background goroutine. It returns
// immediately; Stop shuts the loop down and waits for an in-flight cycle.
func (s *Scheduler) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(loopCtx)
	}()

	s.logger.Info().
		Dur("interval", s.cfg.ScanInterval).
		Bool("run_on_start", s.cfg.RunOnStart).
		Msg("Scheduler started")
}

// Stop cancels the loop and blocks until it exits.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	if s.cfg.RunOnStart {
		s.runCycle(ctx, "startup")
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx, "loop")
		}
	}
}

// runCycle executes one scheduled pass: feed scan, then page check with
// change notifications, bracketed by history records. Errors inside the
// cycle are contained; the loop always survives to the next tick.
func (s *Scheduler) runCycle(ctx context.Context, trigger string) {
	start := time.Now()
	before := s.scan.Stats()

	cycleID := s.recordStart(trigger, start)

	s.scan.RunScanOnce(ctx, trigger)

	changes := s.pages.RunCheckOnce(ctx)
	if len(changes) > 0 && s.notifier != nil {
		s.notifier.NotifyChanges(ctx, changes)
	}

	after := s.scan.Stats()
	s.recordEnd(cycleID, after.ItemsDelivered-before.ItemsDelivered, after.CacheHits-before.CacheHits)
}

func (s *Scheduler) recordStart(trigger string, start time.Time) int64 {
	if s.db == nil {
		return 0
	}
	id, err := s.db.RecordCycleStart(trigger, start)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to record cycle start")
		return 0
	}
	return id
}

func (s *Scheduler) recordEnd(cycleID int64, delivered, cacheHits int) {
	if s.db == nil || cycleID == 0 {
		return
	}
	if err := s.db.RecordCycleEnd(cycleID, time.Now(), "COMPLETED", delivered, cacheHits); err != nil {
		s.logger.Error().Err(err).Msg("Failed to record cycle completion")
	}
}
