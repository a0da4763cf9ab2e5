package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/maftyintel/internal/config"
	"github.com/aleister1102/maftyintel/internal/datastore"
	"github.com/aleister1102/maftyintel/internal/filter"
	"github.com/aleister1102/maftyintel/internal/logger"
	"github.com/aleister1102/maftyintel/internal/monitor"
	"github.com/aleister1102/maftyintel/internal/notifier"
	"github.com/aleister1102/maftyintel/internal/scanner"
	"github.com/aleister1102/maftyintel/internal/scheduler"
	"github.com/rs/zerolog"
)

func main() {
	fmt.Println("MaftyIntel starting...")

	configFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for --config")

	modeFlag := flag.String("mode", "scheduled", "Mode to run: onetime (single scan cycle) or scheduled (periodic loop)")
	modeFlagAlias := flag.String("m", "", "Alias for --mode")

	cleanFlag := flag.String("clean", "", "Reset persisted state and exit: dedup, http_cache, page_hashes, or all")
	flag.Parse()

	if *configFile == "" && *configFileAlias != "" {
		*configFile = *configFileAlias
	}
	if *modeFlagAlias != "" {
		*modeFlag = *modeFlagAlias
	}

	gCfg, err := config.LoadGlobalConfig(*configFile)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load config using path '%s': %v", *configFile, err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Logger initialized successfully.")

	if err := os.MkdirAll(gCfg.StorageConfig.DataDir, 0755); err != nil {
		zLogger.Fatal().Err(err).Str("directory", gCfg.StorageConfig.DataDir).Msg("Could not create data directory")
	}

	store := datastore.NewJSONStore(gCfg.StorageConfig.DataDir, gCfg.StorageConfig.BackupDir, zLogger)

	if *cleanFlag != "" {
		runClean(store, *cleanFlag, zLogger)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scan, pages, discordNotifier := buildPipeline(gCfg, store, zLogger)

	switch *modeFlag {
	case "onetime":
		runOnetime(ctx, gCfg, scan, pages, discordNotifier, zLogger)
	case "scheduled":
		runScheduled(ctx, gCfg, scan, pages, discordNotifier, zLogger)
	default:
		zLogger.Fatal().Str("mode", *modeFlag).Msg("Unknown mode, expected onetime or scheduled")
	}

	zLogger.Info().Msg("MaftyIntel shut down.")
}

// buildPipeline wires the scan and monitor components from configuration.
func buildPipeline(gCfg *config.GlobalConfig, store *datastore.JSONStore, zLogger zerolog.Logger) (*scanner.Scanner, *monitor.PageMonitor, *notifier.DiscordNotifier) {
	scanClient := &http.Client{Timeout: gCfg.ScannerConfig.HTTPTimeout}
	monitorClient := &http.Client{Timeout: gCfg.MonitorConfig.HTTPTimeout}

	discordNotifier := notifier.NewDiscordNotifier(gCfg.NotificationConfig, zLogger, scanClient)

	engine := filter.NewEngine(zLogger)
	rules := filter.NewSourceRules(nil)
	stats := scanner.NewRunStats()

	scan := scanner.NewScanner(&gCfg.ScannerConfig, store, engine, rules, scanClient, discordNotifier, stats, zLogger)
	pages := monitor.NewPageMonitor(&gCfg.MonitorConfig, store, monitorClient, zLogger)

	return scan, pages, discordNotifier
}

// runOnetime executes a single scan cycle plus one page check, then exits.
func runOnetime(ctx context.Context, gCfg *config.GlobalConfig, scan *scanner.Scanner, pages *monitor.PageMonitor, discordNotifier *notifier.DiscordNotifier, zLogger zerolog.Logger) {
	scan.RunScanOnce(ctx, "onetime")

	if gCfg.MonitorConfig.Enabled {
		changes := pages.RunCheckOnce(ctx)
		discordNotifier.NotifyChanges(ctx, changes)
	}

	snapshot := scan.Stats()
	zLogger.Info().
		Int("delivered", snapshot.ItemsDelivered).
		Int("cache_hits", snapshot.CacheHits).
		Msg("One-time run finished")
}

// runScheduled starts the periodic loop and blocks until the context is
// cancelled by a termination signal.
func runScheduled(ctx context.Context, gCfg *config.GlobalConfig, scan *scanner.Scanner, pages *monitor.PageMonitor, discordNotifier *notifier.DiscordNotifier, zLogger zerolog.Logger) {
	var historyDB *scheduler.DB
	if gCfg.SchedulerConfig.SQLiteDBPath != "" {
		db, err := scheduler.NewDB(gCfg.SchedulerConfig.SQLiteDBPath, zLogger)
		if err != nil {
			zLogger.Error().Err(err).Msg("Cycle history database unavailable, continuing without it")
		} else {
			historyDB = db
			defer historyDB.Close()
		}
	}

	sched := scheduler.NewScheduler(gCfg.SchedulerConfig, scan, pages, discordNotifier, historyDB, zLogger)
	sched.Start(ctx)

	<-ctx.Done()
	zLogger.Info().Msg("Termination signal received, shutting down...")
	sched.Stop()
}

// runClean performs a state-maintenance reset and reports what was cleared.
func runClean(store *datastore.JSONStore, kind string, zLogger zerolog.Logger) {
	before, err := store.Clean(datastore.CleanKind(kind))
	if err != nil {
		zLogger.Fatal().Err(err).Str("kind", kind).Msg("State clean failed")
	}
	zLogger.Info().
		Str("kind", kind).
		Int("history_entries", before.HistoryEntries).
		Int("http_cache_urls", before.HTTPCacheURLs).
		Int("page_hash_sites", before.PageHashSites).
		Msg("State cleaned")
}
