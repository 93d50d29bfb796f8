package treestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/gray-logic-connect/internal/infrastructure/logging"
)

// Snapshot persistence constants.
const (
	// dirPermissions is the permission mode for the snapshot directory.
	dirPermissions = 0o750

	// busyTimeoutMs is the maximum time to wait for a database lock.
	busyTimeoutMs = 5000
)

// snapshotSchema holds the retained map; one row per topic.
const snapshotSchema = `
CREATE TABLE IF NOT EXISTS retained (
	topic      TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// Snapshot persists the retained tree to SQLite so a restarted daemon
// can answer queries before the broker has redelivered everything.
type Snapshot struct {
	db   *sql.DB
	path string
}

// OpenSnapshot opens (creating if needed) the snapshot database.
//
// Parameters:
//   - path: Filesystem path to the SQLite file
//
// Returns:
//   - *Snapshot: Ready snapshot store
//   - error: If the directory, file, or schema cannot be set up
func OpenSnapshot(path string) (*Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: creating directory: %w", ErrSnapshotFailed, err)
	}

	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL", path, busyTimeoutMs)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", ErrSnapshotFailed, err)
	}

	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %w", ErrSnapshotFailed, err)
	}

	return &Snapshot{db: db, path: path}, nil
}

// Save replaces the persisted tree with the given retained map, in one
// transaction.
func (s *Snapshot) Save(ctx context.Context, retained map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrSnapshotFailed, err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM retained`); err != nil {
		return fmt.Errorf("%w: clearing: %w", ErrSnapshotFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO retained (topic, payload, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: preparing insert: %w", ErrSnapshotFailed, err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for topic, payload := range retained {
		if _, err := stmt.ExecContext(ctx, topic, payload, now); err != nil {
			return fmt.Errorf("%w: inserting %q: %w", ErrSnapshotFailed, topic, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrSnapshotFailed, err)
	}
	return nil
}

// Load returns the persisted retained map.
func (s *Snapshot) Load(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic, payload FROM retained`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying: %w", ErrSnapshotFailed, err)
	}
	defer rows.Close()

	retained := make(map[string][]byte)
	for rows.Next() {
		var topic string
		var payload []byte
		if err := rows.Scan(&topic, &payload); err != nil {
			return nil, fmt.Errorf("%w: scanning: %w", ErrSnapshotFailed, err)
		}
		retained[topic] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating: %w", ErrSnapshotFailed, err)
	}
	return retained, nil
}

// Close releases the database handle.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// Run persists the store on every interval tick until the context is
// cancelled, then takes a final snapshot so shutdown loses nothing.
func (s *Snapshot) Run(ctx context.Context, store *Store, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Save(ctx, store.Export()); err != nil {
				logger.Error("snapshot save failed", "error", err)
			}
		case <-ctx.Done():
			// Final snapshot with a fresh context; ctx is already done.
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s.Save(saveCtx, store.Export()); err != nil {
				logger.Error("final snapshot save failed", "error", err)
			}
			cancel()
			return
		}
	}
}
