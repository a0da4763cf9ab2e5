package scheduler

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DB records scan-cycle history so operators can audit when cycles ran and
// what they produced.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// CycleHistoryEntry represents a record in the scan_history table.
type CycleHistoryEntry struct {
	ID        int64
	Trigger   string
	StartTime time.Time
	EndTime   sql.NullTime
	Status    string
	Delivered int
	CacheHits int
}

// NewDB opens (creating if needed) the cycle-history database.
func NewDB(dataSourceName string, logger zerolog.Logger) (*DB, error) {
	componentLogger := logger.With().Str("component", "SchedulerDB").Logger()

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create database directory "+dbDir)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "sql.Open failed for "+dataSourceName)
	}

	db := &DB{db: dbInstance, logger: componentLogger}
	if err := db.initSchema(); err != nil {
		db.Close()
		return nil, errorwrapper.WrapError(err, "failed to initialize schema")
	}

	componentLogger.Info().Str("path", dataSourceName).Msg("Cycle history database ready")
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func (d *DB) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trigger_source TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		status TEXT NOT NULL,
		delivered INTEGER DEFAULT 0,
		cache_hits INTEGER DEFAULT 0
	);
	`
	_, err := d.db.Exec(query)
	return err
}

// RecordCycleStart inserts a STARTED record and returns its row ID.
func (d *DB) RecordCycleStart(trigger string, startTime time.Time) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO scan_history (trigger_source, start_time, status) VALUES (?, ?, ?)`,
		trigger, startTime, "STARTED",
	)
	if err != nil {
		return 0, errorwrapper.WrapError(err, "failed to insert cycle start record")
	}
	return result.LastInsertId()
}

// RecordCycleEnd completes a cycle record with its outcome.
func (d *DB) RecordCycleEnd(id int64, endTime time.Time, status string, delivered, cacheHits int) error {
	_, err := d.db.Exec(
		`UPDATE scan_history SET end_time = ?, status = ?, delivered = ?, cache_hits = ? WHERE id = ?`,
		endTime, status, delivered, cacheHits, id,
	)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to update cycle record")
	}
	return nil
}

// LastCompletedCycleTime returns the start time of the most recent completed
// cycle, or sql.ErrNoRows when none exists.
func (d *DB) LastCompletedCycleTime() (time.Time, error) {
	var startTime time.Time
	err := d.db.QueryRow(
		`SELECT start_time FROM scan_history WHERE status = ? ORDER BY start_time DESC LIMIT 1`,
		"COMPLETED",
	).Scan(&startTime)
	return startTime, err
}
