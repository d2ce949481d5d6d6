// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/logging"
	"github.com/xvierd/gitstate/internal/mergeinfo"
	"github.com/xvierd/gitstate/internal/ports"
)

// StatusOptions configures the refresh pipeline.
type StatusOptions struct {
	LockingEnabled bool
	MergeInfo      mergeinfo.Mode
	// HistoryDepth caps the revisions loaded per file. Zero or less loads all.
	HistoryDepth int
	// Workers bounds concurrent history loads.
	Workers int
}

// RefreshRequest selects what a refresh collects.
type RefreshRequest struct {
	// Paths are reported even when clean.
	Paths []string
	// Carry are paths an earlier refresh reported. They stay reported while
	// git still knows them and are dropped once they classify as unknown.
	Carry []string
	// WithHistory loads history for every reported path. Conflicted paths
	// always get their history.
	WithHistory bool
}

// StatusService classifies the working copy and publishes snapshots of it.
type StatusService struct {
	reader  ports.WorkingCopyReader
	storage ports.Storage
	locks   ports.LockLister
	opts    StatusOptions
	logger  *log.Logger

	refreshMu sync.Mutex
	current   atomic.Pointer[domain.Snapshot]
}

// NewStatusService creates a new status service. storage may be nil.
func NewStatusService(reader ports.WorkingCopyReader, storage ports.Storage, opts StatusOptions, logger *log.Logger) *StatusService {
	if opts.MergeInfo == nil {
		opts.MergeInfo, _ = mergeinfo.ForMode(mergeinfo.Resolve)
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &StatusService{reader: reader, storage: storage, opts: opts, logger: logger}
}

// SetLockLister sets the source of remote locks. Locks are only queried when
// locking is enabled.
func (s *StatusService) SetLockLister(locks ports.LockLister) {
	s.locks = locks
}

// Root returns the worktree root being classified.
func (s *StatusService) Root() string {
	return s.reader.Root()
}

// Mode returns the merge-info mode in use.
func (s *StatusService) Mode() mergeinfo.Mode {
	return s.opts.MergeInfo
}

// Snapshot returns the last published snapshot, or nil before the first refresh.
func (s *StatusService) Snapshot() *domain.Snapshot {
	return s.current.Load()
}

// Refresh reads the working copy, publishes a new snapshot and persists it.
// Concurrent refreshes are serialized; readers keep seeing the previous
// snapshot until the new one is complete.
func (s *StatusService) Refresh(ctx context.Context, req RefreshRequest) (*domain.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()

	outdated, err := s.reader.OutdatedPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find outdated paths: %w", err)
	}

	locks, user, err := s.collectLocks(ctx)
	if err != nil {
		return nil, err
	}

	// explicit paths are reported even when git does not know them.
	explicit := make(map[string]bool, len(req.Paths)+len(outdated)+len(locks))
	requested := make([]string, 0, len(req.Paths)+len(outdated)+len(locks)+len(req.Carry))
	for _, p := range req.Paths {
		if rel, err := domain.RepoPath(s.reader.Root(), p); err == nil {
			explicit[rel] = true
		}
		requested = append(requested, p)
	}
	for p := range outdated {
		explicit[p] = true
		requested = append(requested, p)
	}
	for p := range locks {
		explicit[p] = true
		requested = append(requested, p)
	}
	requested = append(requested, req.Carry...)

	statuses, err := s.reader.Statuses(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to read statuses: %w", err)
	}
	for _, p := range req.Carry {
		if status, ok := statuses[p]; ok && status == domain.StatusUnknown && !explicit[p] {
			delete(statuses, p)
		}
	}

	now := time.Now()
	states := make([]*domain.FileState, 0, len(statuses))
	for path, status := range statuses {
		fs := &domain.FileState{
			Path:                 path,
			WorkingCopy:          status,
			Lock:                 domain.LockNone,
			LockingEnabled:       s.opts.LockingEnabled,
			NewerVersionOnRemote: outdated[path],
			Timestamp:            now,
		}
		if lock, ok := locks[path]; ok {
			fs.LockOwner = lock.Owner
			fs.Lock = domain.LockedOther
			if lock.Owner == user {
				fs.Lock = domain.LockedSelf
			}
		}
		if fs.IsConflicted() {
			info, err := s.reader.Conflict(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("failed to read conflict of %s: %w", path, err)
			}
			s.opts.MergeInfo.Record(fs, info.BaseFileHash, info.Resolve)
		}
		states = append(states, fs)
	}

	if err := s.loadHistories(ctx, states, req.WithHistory); err != nil {
		return nil, err
	}

	for _, fs := range states {
		if err := fs.Validate(); err != nil {
			return nil, fmt.Errorf("invalid state: %w", err)
		}
	}

	snap := domain.NewSnapshot(s.reader.Root(), states)
	s.current.Store(snap)

	s.logger.Debug("status refreshed",
		"files", snap.Len(),
		"outdated", len(outdated),
		"locks", len(locks),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if s.storage != nil {
		if err := s.storage.States().ReplaceSnapshot(ctx, snap); err != nil {
			s.logger.Warn("failed to persist snapshot", "err", err)
		}
	}

	return snap, nil
}

func (s *StatusService) collectLocks(ctx context.Context) (map[string]ports.Lock, string, error) {
	if !s.opts.LockingEnabled || s.locks == nil {
		return nil, "", nil
	}

	list, err := s.locks.Locks(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list locks: %w", err)
	}
	user, err := s.locks.CurrentUser(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve lock user: %w", err)
	}

	byPath := make(map[string]ports.Lock, len(list))
	for _, l := range list {
		byPath[filepath.ToSlash(l.Path)] = l
	}
	return byPath, user, nil
}

// loadHistories fills in History for the states that need it, at most
// opts.Workers at a time. Each goroutine owns one state.
func (s *StatusService) loadHistories(ctx context.Context, states []*domain.FileState, all bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for _, fs := range states {
		if !all && !fs.IsConflicted() {
			continue
		}
		if !fs.IsSourceControlled() {
			continue
		}
		g.Go(func() error {
			revs, err := s.reader.History(gctx, fs.Path, s.opts.HistoryDepth)
			if err != nil {
				return fmt.Errorf("failed to load history of %s: %w", fs.Path, err)
			}
			fs.History = revs
			return nil
		})
	}
	return g.Wait()
}

// Load publishes the last persisted snapshot of this repository.
func (s *StatusService) Load(ctx context.Context) (*domain.Snapshot, error) {
	if s.storage == nil {
		return nil, domain.ErrNoSnapshot
	}
	snap, err := s.storage.States().LatestSnapshot(ctx, s.reader.Root())
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	return snap, nil
}

// snapshot returns the published snapshot, refreshing once if there is none.
func (s *StatusService) snapshot(ctx context.Context) (*domain.Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.Refresh(ctx, RefreshRequest{})
}

// State returns the current state of path. Clean paths that were never
// reported are classified on demand.
func (s *StatusService) State(ctx context.Context, path string) (*domain.FileState, error) {
	path, err := s.normalize(path)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if st, ok := snap.Get(path); ok {
		return st, nil
	}

	snap, err = s.Refresh(ctx, RefreshRequest{Paths: []string{path}, Carry: snap.Paths()})
	if err != nil {
		return nil, err
	}
	if st, ok := snap.Get(path); ok {
		return st, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFileStateNotFound, path)
}

// States returns the current states matching filter. A query orders the
// result by match quality; otherwise states are ordered by path.
func (s *StatusService) States(ctx context.Context, filter ports.StateFilter) ([]*domain.FileState, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return domain.FilterStates(snap.Sorted(), filter.Query, filter.ModifiedOnly), nil
}

// CheckInCandidates returns the files that belong in the next commit: those
// with changes to record that may be checked in.
func (s *StatusService) CheckInCandidates(ctx context.Context) ([]*domain.FileState, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var result []*domain.FileState
	for _, st := range snap.Sorted() {
		if st.IsModified() && st.CanCheckIn() {
			result = append(result, st)
		}
	}
	return result, nil
}

// History returns up to limit revisions of path, newest first.
func (s *StatusService) History(ctx context.Context, path string, limit int) ([]domain.Revision, error) {
	if path == "" {
		return nil, domain.ErrEmptyPath
	}
	revs, err := s.reader.History(ctx, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return revs, nil
}

// MergeInfo answers the merge-base and incoming-side query for path through
// the configured mode.
func (s *StatusService) MergeInfo(ctx context.Context, path string) (*ports.MergeInfo, error) {
	st, err := s.State(ctx, path)
	if err != nil {
		return nil, err
	}

	mode := s.opts.MergeInfo
	info := &ports.MergeInfo{Path: st.Path, Mode: mode.Name(), Conflicted: st.IsConflicted()}
	if !st.IsConflicted() {
		return info, nil
	}

	if len(st.History) == 0 {
		revs, err := s.reader.History(ctx, st.Path, s.opts.HistoryDepth)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		// Published states are shared; query a copy.
		cp := *st
		cp.History = revs
		st = &cp
	}

	if rev, ok := mode.BaseRevision(st); ok {
		info.BaseRevision = &rev
	}
	if ri, ok := mode.ResolveInfo(st); ok {
		info.Resolve = &ri
	}
	return info, nil
}

// normalize converts path to the slash-separated, root-relative form used as
// snapshot key.
func (s *StatusService) normalize(path string) (string, error) {
	return domain.RepoPath(s.reader.Root(), path)
}

// IsNotFound reports whether err means a path or snapshot is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrFileStateNotFound) || errors.Is(err, domain.ErrNoSnapshot)
}
