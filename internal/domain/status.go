package domain

import "fmt"

// WorkingCopyStatus classifies a file's relationship to its last committed content.
type WorkingCopyStatus string

const (
	StatusUnknown       WorkingCopyStatus = "unknown"
	StatusUnchanged     WorkingCopyStatus = "unchanged"
	StatusAdded         WorkingCopyStatus = "added"
	StatusDeleted       WorkingCopyStatus = "deleted"
	StatusModified      WorkingCopyStatus = "modified"
	StatusRenamed       WorkingCopyStatus = "renamed"
	StatusCopied        WorkingCopyStatus = "copied"
	StatusConflicted    WorkingCopyStatus = "conflicted"
	StatusIgnored       WorkingCopyStatus = "ignored"
	StatusNotControlled WorkingCopyStatus = "not_controlled"
	StatusMissing       WorkingCopyStatus = "missing"
)

// WorkingCopyStatuses lists every working-copy status.
var WorkingCopyStatuses = []WorkingCopyStatus{
	StatusUnknown,
	StatusUnchanged,
	StatusAdded,
	StatusDeleted,
	StatusModified,
	StatusRenamed,
	StatusCopied,
	StatusConflicted,
	StatusIgnored,
	StatusNotControlled,
	StatusMissing,
}

// ValidateWorkingCopyStatus checks if a string is a known working-copy status.
func ValidateWorkingCopyStatus(s string) (WorkingCopyStatus, error) {
	ws := WorkingCopyStatus(s)
	for _, valid := range WorkingCopyStatuses {
		if ws == valid {
			return ws, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWorkingCopyStatus, s)
}

// LockStatus describes who, if anyone, holds the exclusive lock on a file.
type LockStatus string

const (
	LockNone    LockStatus = "not_locked"
	LockedSelf  LockStatus = "locked_self"
	LockedOther LockStatus = "locked_other"
)

// LockStatuses lists every lock status.
var LockStatuses = []LockStatus{
	LockNone,
	LockedSelf,
	LockedOther,
}

// ValidateLockStatus checks if a string is a known lock status.
func ValidateLockStatus(s string) (LockStatus, error) {
	ls := LockStatus(s)
	for _, valid := range LockStatuses {
		if ls == valid {
			return ls, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLockStatus, s)
}

// Label returns a short human-readable label.
func (s LockStatus) Label() string {
	switch s {
	case LockNone:
		return "Not locked"
	case LockedSelf:
		return "Locked by you"
	case LockedOther:
		return "Locked by another user"
	default:
		return "Unknown"
	}
}
