// Package history records completed upgrade runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"winup/internal/winget"
)

// Run summarizes one recorded batch of upgrade attempts.
type Run struct {
	StartedAt time.Time
	ID        int64
	Total     int
	Succeeded int
	Failed    int
	NeedClose int
	UpToDate  int
}

// Item is one upgrade attempt within a run, in execution order.
type Item struct {
	AppID       string
	Name        string
	FromVersion string
	ToVersion   string
	Outcome     string
	Message     string
	RunID       int64
	Position    int
}

// Store manages the SQLite database of past upgrade runs.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a completed batch and its per-item outcomes, returning
// the new run ID. Counters are derived from the item outcomes.
func (s *Store) RecordRun(startedAt time.Time, items []Item) (int64, error) {
	var succeeded, failed, needClose, upToDate int
	for _, it := range items {
		switch it.Outcome {
		case winget.OutcomeSuccess.String():
			succeeded++
		case winget.OutcomeFailure.String():
			failed++
		case winget.OutcomeNeedsClosed.String():
			needClose++
		case winget.OutcomeUpToDate.String():
			upToDate++
		}
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, total, succeeded, failed, need_close, up_to_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, startedAt.UTC().Format(time.RFC3339), len(items), succeeded, failed, needClose, upToDate)
	if err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return 0, fmt.Errorf("inserting run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for i, it := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_items (run_id, position, app_id, name, from_version, to_version, outcome, message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, i, it.AppID, it.Name, it.FromVersion, it.ToVersion, it.Outcome, it.Message); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return 0, fmt.Errorf("inserting run item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}

	return runID, nil
}

// RecentRuns returns the N most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	ctx := context.Background()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, total, succeeded, failed, need_close, up_to_date
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string

		if err := rows.Scan(&r.ID, &startedAt, &r.Total, &r.Succeeded, &r.Failed, &r.NeedClose, &r.UpToDate); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		r.StartedAt, err = parseTime(startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}

		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Items returns the recorded items of a run in execution order.
func (s *Store) Items(runID int64) ([]Item, error) {
	ctx := context.Background()
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, position, app_id, name, from_version, to_version, outcome, message
		FROM run_items
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run items: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.RunID, &it.Position, &it.AppID, &it.Name, &it.FromVersion, &it.ToVersion, &it.Outcome, &it.Message); err != nil {
			return nil, fmt.Errorf("scanning run item: %w", err)
		}

		items = append(items, it)
	}

	return items, rows.Err()
}

// Prune keeps only the N most recent runs, deleting older ones and their items.
func (s *Store) Prune(keepN int) error {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM run_items
		WHERE run_id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)
	`, keepN)
	if err != nil {
		return fmt.Errorf("pruning run items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)
	`, keepN)
	if err != nil {
		return fmt.Errorf("pruning runs: %w", err)
	}

	return nil
}

// BuildItems converts an ordered result set into storable items, pulling
// name and version metadata from the listed apps where available.
func BuildItems(apps []winget.UpdatableApp, entries []winget.ReportEntry) []Item {
	byID := make(map[string]winget.UpdatableApp, len(apps))
	for _, a := range apps {
		byID[a.ID] = a
	}

	items := make([]Item, 0, len(entries))
	for i, e := range entries {
		it := Item{
			AppID:    e.ID,
			Position: i,
			Outcome:  e.Result.Outcome.String(),
			Message:  e.Result.Message,
		}

		if app, ok := byID[e.ID]; ok {
			it.Name = app.Name
			it.FromVersion = app.Version
			it.ToVersion = app.Available
		}

		items = append(items, it)
	}

	return items
}

// migrate runs schema migrations.
func (s *Store) migrate() error {
	currentVersion := s.getSchemaVersion()

	migrations := []func(*sql.Tx) error{
		migrateV1,
	}

	ctx := context.Background()
	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if err := migrations[i](tx); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort on migration failure
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		// Update schema version
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("updating schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("inserting schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 if the schema_version table doesn't exist.
func (s *Store) getSchemaVersion() int {
	ctx := context.Background()
	// Check if schema_version table exists
	var tableName string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&tableName)
	if err != nil {
		return 0
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return 0
	}

	return version
}

// parseTime parses a timestamp string from SQLite, trying multiple formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

// migrateV1 creates the initial schema.
func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			total       INTEGER NOT NULL,
			succeeded   INTEGER NOT NULL,
			failed      INTEGER NOT NULL,
			need_close  INTEGER NOT NULL,
			up_to_date  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_items (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        INTEGER NOT NULL,
			position      INTEGER NOT NULL,
			app_id        TEXT NOT NULL,
			name          TEXT NOT NULL,
			from_version  TEXT NOT NULL,
			to_version    TEXT NOT NULL,
			outcome       TEXT NOT NULL,
			message       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_items_run
			ON run_items(run_id, position ASC)`,
	}

	ctx := context.Background()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}
