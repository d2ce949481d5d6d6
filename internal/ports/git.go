package ports

import (
	"context"
	"time"

	"github.com/xvierd/gitstate/internal/domain"
)

// ConflictInfo holds what the working copy knows about an unresolved merge of one path.
type ConflictInfo struct {
	// BaseFileHash is the blob hash of the common ancestor (index stage 1).
	BaseFileHash string
	Resolve      domain.ResolveInfo
}

// WorkingCopyReader defines the interface for reading the state of a working copy.
// This is a driven port (implemented by adapters).
type WorkingCopyReader interface {
	// Root returns the absolute path of the worktree.
	Root() string

	// Statuses returns the working-copy status of every changed path, plus
	// each of the requested paths even when clean.
	Statuses(ctx context.Context, paths []string) (map[string]domain.WorkingCopyStatus, error)

	// OutdatedPaths returns the paths changed on the upstream branch since the
	// merge base with HEAD. A branch without upstream has no outdated paths.
	OutdatedPaths(ctx context.Context) (map[string]bool, error)

	// History returns up to limit revisions of path, newest first. A limit of
	// zero or less means no limit.
	History(ctx context.Context, path string, limit int) ([]domain.Revision, error)

	// Conflict returns the merge data of a conflicted path.
	Conflict(ctx context.Context, path string) (*ConflictInfo, error)
}

// Lock is an exclusive file lock held on the remote.
type Lock struct {
	ID       string
	Path     string
	Owner    string
	LockedAt time.Time
}

// LockLister defines the interface for querying remote file locks.
// This is a driven port (implemented by adapters).
type LockLister interface {
	// Locks returns every lock currently held.
	Locks(ctx context.Context) ([]Lock, error)

	// CurrentUser returns the lock owner name that identifies this user.
	CurrentUser(ctx context.Context) (string, error)
}
