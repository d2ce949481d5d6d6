// Package storage provides SQLite implementations of the storage ports.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/xvierd/gitstate/internal/ports"
)

// sqliteStorage implements the ports.Storage interface using SQLite.
type sqliteStorage struct {
	db        *sql.DB
	stateRepo ports.StateRepository
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// pragmas run on every new connection before migration. Revisions cascade
// from their file state, which cascades from its snapshot.
var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
}

// New opens the snapshot cache at dbPath, creating the schema when missing.
func New(dbPath string) (ports.Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer, and an in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	storage := &sqliteStorage{
		db:        db,
		stateRepo: newStateRepository(db),
	}

	if err := storage.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return storage, nil
}

// NewMemory opens a throwaway cache, used by tests.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// States returns the file-state repository.
func (s *sqliteStorage) States() ports.StateRepository {
	return s.stateRepo
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// Migrate creates the database schema.
func (s *sqliteStorage) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL UNIQUE,
		taken_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS file_states (
		snapshot_id TEXT NOT NULL,
		path TEXT NOT NULL,
		working_copy TEXT NOT NULL,
		lock_status TEXT NOT NULL,
		lock_owner TEXT NOT NULL DEFAULT '',
		locking_enabled INTEGER NOT NULL DEFAULT 0,
		newer_on_remote INTEGER NOT NULL DEFAULT 0,
		observed_at DATETIME NOT NULL,
		merge_base_hash TEXT NOT NULL DEFAULT '',
		resolve_base_file TEXT NOT NULL DEFAULT '',
		resolve_base_revision TEXT NOT NULL DEFAULT '',
		resolve_remote_file TEXT NOT NULL DEFAULT '',
		resolve_remote_revision TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (snapshot_id, path),
		FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_file_states_status ON file_states(working_copy);

	CREATE TABLE IF NOT EXISTS revisions (
		snapshot_id TEXT NOT NULL,
		path TEXT NOT NULL,
		position INTEGER NOT NULL,
		number INTEGER NOT NULL,
		identifier TEXT NOT NULL,
		file_hash TEXT NOT NULL DEFAULT '',
		filename TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		committed_at DATETIME NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (snapshot_id, path, position),
		FOREIGN KEY (snapshot_id, path) REFERENCES file_states(snapshot_id, path) ON DELETE CASCADE
	);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}
