// Package domain contains the version-control state model for gitstate.
// A FileState records what is known about one path and answers, without any I/O,
// which source-control operations are legal for it.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors.
var (
	ErrInvalidWorkingCopyStatus = errors.New("invalid working copy status")
	ErrInvalidLockStatus        = errors.New("invalid lock status")
	ErrLockOwnerWithoutLock     = errors.New("lock owner set on an unlocked file")
	ErrMergeDataWithoutConflict = errors.New("merge data set on a file that is not conflicted")
	ErrDuplicateRevision        = errors.New("duplicate revision identifier")
	ErrHistoryIndexOutOfRange   = errors.New("history index out of range")
	ErrFileStateNotFound        = errors.New("file state not found")
	ErrNoSnapshot               = errors.New("no status snapshot available")
	ErrInvalidMergeInfoMode     = errors.New("invalid merge info mode")
	ErrEmptyPath                = errors.New("path cannot be empty")
)

// FileState is the status of one versioned path as observed by a refresh.
// A FileState is built once by the refresh pipeline and must not be modified
// after it has been published; every method is read-only.
type FileState struct {
	Path                 string
	WorkingCopy          WorkingCopyStatus
	Lock                 LockStatus
	LockOwner            string
	LockingEnabled       bool
	NewerVersionOnRemote bool
	Timestamp            time.Time
	History              []Revision

	PendingMergeBaseFileHash string
	PendingResolveInfo       ResolveInfo
}

// NewFileState creates a state for path with the given working-copy status,
// no lock and no history.
func NewFileState(path string, status WorkingCopyStatus) (*FileState, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if _, err := ValidateWorkingCopyStatus(string(status)); err != nil {
		return nil, err
	}
	return &FileState{
		Path:        path,
		WorkingCopy: status,
		Lock:        LockNone,
		Timestamp:   time.Now(),
	}, nil
}

// Validate checks the record invariants.
func (f *FileState) Validate() error {
	if f.Path == "" {
		return ErrEmptyPath
	}
	if _, err := ValidateWorkingCopyStatus(string(f.WorkingCopy)); err != nil {
		return fmt.Errorf("%s: %w", f.Path, err)
	}
	if _, err := ValidateLockStatus(string(f.Lock)); err != nil {
		return fmt.Errorf("%s: %w", f.Path, err)
	}
	if f.Lock == LockNone && f.LockOwner != "" {
		return fmt.Errorf("%s: %w", f.Path, ErrLockOwnerWithoutLock)
	}
	if f.WorkingCopy != StatusConflicted && (f.PendingMergeBaseFileHash != "" || f.PendingResolveInfo != (ResolveInfo{})) {
		return fmt.Errorf("%s: %w", f.Path, ErrMergeDataWithoutConflict)
	}

	seen := make(map[string]struct{}, len(f.History))
	for _, rev := range f.History {
		if _, ok := seen[rev.Identifier]; ok {
			return fmt.Errorf("%s: %w: %s", f.Path, ErrDuplicateRevision, rev.Identifier)
		}
		seen[rev.Identifier] = struct{}{}
	}
	return nil
}

// Filename returns the path of the file.
func (f *FileState) Filename() string {
	return f.Path
}

// LockedBy returns the lock owner, or "" when the file is not locked.
func (f *FileState) LockedBy() string {
	if f.Lock == LockNone {
		return ""
	}
	return f.LockOwner
}
