package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/ports"
)

// stateRepository implements ports.StateRepository using SQLite.
type stateRepository struct {
	db *sql.DB
}

// newStateRepository creates a new state repository.
func newStateRepository(db *sql.DB) ports.StateRepository {
	return &stateRepository{db: db}
}

const stateColumns = `
	fs.path, fs.working_copy, fs.lock_status, fs.lock_owner, fs.locking_enabled,
	fs.newer_on_remote, fs.observed_at, fs.merge_base_hash,
	fs.resolve_base_file, fs.resolve_base_revision, fs.resolve_remote_file, fs.resolve_remote_revision
`

const revisionColumns = `
	path, number, identifier, file_hash, filename, author, committed_at, description, action, file_size
`

// ReplaceSnapshot stores snap as the only snapshot of its root.
func (r *stateRepository) ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE root = ?`, snap.Root); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, root, taken_at) VALUES (?, ?, ?)`,
		snap.ID, snap.Root, snap.TakenAt,
	); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	stateStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO file_states (
			snapshot_id, path, working_copy, lock_status, lock_owner, locking_enabled,
			newer_on_remote, observed_at, merge_base_hash,
			resolve_base_file, resolve_base_revision, resolve_remote_file, resolve_remote_revision
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare file state insert: %w", err)
	}
	defer stateStmt.Close()

	revStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO revisions (
			snapshot_id, path, position, number, identifier, file_hash, filename,
			author, committed_at, description, action, file_size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare revision insert: %w", err)
	}
	defer revStmt.Close()

	for _, st := range snap.Sorted() {
		if _, err := stateStmt.ExecContext(ctx,
			snap.ID,
			st.Path,
			string(st.WorkingCopy),
			string(st.Lock),
			st.LockOwner,
			st.LockingEnabled,
			st.NewerVersionOnRemote,
			st.Timestamp,
			st.PendingMergeBaseFileHash,
			st.PendingResolveInfo.BaseFile,
			st.PendingResolveInfo.BaseRevision,
			st.PendingResolveInfo.RemoteFile,
			st.PendingResolveInfo.RemoteRevision,
		); err != nil {
			return fmt.Errorf("failed to save state of %s: %w", st.Path, err)
		}

		for pos, rev := range st.History {
			if _, err := revStmt.ExecContext(ctx,
				snap.ID,
				st.Path,
				pos,
				rev.Number,
				rev.Identifier,
				rev.FileHash,
				rev.Filename,
				rev.Author,
				rev.Date,
				rev.Description,
				string(rev.Action),
				rev.FileSize,
			); err != nil {
				return fmt.Errorf("failed to save revision %s of %s: %w", rev.Identifier, st.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the stored snapshot for root.
func (r *stateRepository) LatestSnapshot(ctx context.Context, root string) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{Root: root, States: make(map[string]*domain.FileState)}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, taken_at FROM snapshots WHERE root = ?`, root,
	).Scan(&snap.ID, &snap.TakenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	states, err := r.queryStates(ctx, `
		SELECT `+stateColumns+`
		FROM file_states fs
		WHERE fs.snapshot_id = ?
		ORDER BY fs.path
	`, snap.ID)
	if err != nil {
		return nil, err
	}
	for _, st := range states {
		snap.States[st.Path] = st
	}

	if err := r.attachHistory(ctx, snap.States, `
		SELECT `+revisionColumns+`
		FROM revisions
		WHERE snapshot_id = ?
		ORDER BY path, position
	`, snap.ID); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *stateRepository) queryStates(ctx context.Context, query string, args ...any) ([]*domain.FileState, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query file states: %w", err)
	}
	defer rows.Close()

	var states []*domain.FileState
	for rows.Next() {
		var st domain.FileState
		var observedAt time.Time
		if err := rows.Scan(
			&st.Path,
			&st.WorkingCopy,
			&st.Lock,
			&st.LockOwner,
			&st.LockingEnabled,
			&st.NewerVersionOnRemote,
			&observedAt,
			&st.PendingMergeBaseFileHash,
			&st.PendingResolveInfo.BaseFile,
			&st.PendingResolveInfo.BaseRevision,
			&st.PendingResolveInfo.RemoteFile,
			&st.PendingResolveInfo.RemoteRevision,
		); err != nil {
			return nil, fmt.Errorf("failed to scan file state: %w", err)
		}
		st.Timestamp = observedAt
		states = append(states, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file states: %w", err)
	}
	return states, nil
}

func (r *stateRepository) attachHistory(ctx context.Context, states map[string]*domain.FileState, query string, args ...any) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query revisions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var rev domain.Revision
		if err := rows.Scan(
			&path,
			&rev.Number,
			&rev.Identifier,
			&rev.FileHash,
			&rev.Filename,
			&rev.Author,
			&rev.Date,
			&rev.Description,
			&rev.Action,
			&rev.FileSize,
		); err != nil {
			return fmt.Errorf("failed to scan revision: %w", err)
		}
		if st, ok := states[path]; ok {
			st.History = append(st.History, rev)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read revisions: %w", err)
	}
	return nil
}
