package domain

// IsSourceControlled reports whether git tracks the file.
func (f *FileState) IsSourceControlled() bool {
	return f.WorkingCopy != StatusNotControlled &&
		f.WorkingCopy != StatusIgnored &&
		f.WorkingCopy != StatusUnknown
}

// IsCurrent reports whether the local copy is the latest known revision.
func (f *FileState) IsCurrent() bool {
	return !f.NewerVersionOnRemote
}

// IsAdded reports whether the file is scheduled for addition.
func (f *FileState) IsAdded() bool {
	return f.WorkingCopy == StatusAdded
}

// IsDeleted reports whether the file is scheduled for deletion or missing on disk.
func (f *FileState) IsDeleted() bool {
	return f.WorkingCopy == StatusDeleted || f.WorkingCopy == StatusMissing
}

// IsIgnored reports whether the file matches an ignore rule.
func (f *FileState) IsIgnored() bool {
	return f.WorkingCopy == StatusIgnored
}

// IsUnknown reports whether the status could not be determined.
func (f *FileState) IsUnknown() bool {
	return f.WorkingCopy == StatusUnknown
}

// IsConflicted reports whether the file has unresolved merge conflicts.
func (f *FileState) IsConflicted() bool {
	return f.WorkingCopy == StatusConflicted
}

// IsModified reports whether the file carries a change that a commit must record.
//
// Callers building a changeset should drop files for which this is false
// before committing.
func (f *FileState) IsModified() bool {
	switch f.WorkingCopy {
	case StatusAdded, StatusDeleted, StatusModified, StatusRenamed,
		StatusCopied, StatusMissing, StatusConflicted:
		return true
	default:
		return false
	}
}

// IsCheckedOut reports whether the file is open for editing. Without locking,
// every tracked file is always checked out.
func (f *FileState) IsCheckedOut() bool {
	if f.LockingEnabled {
		return f.Lock == LockedSelf
	}
	return f.IsSourceControlled()
}

// IsCheckedOutByOther reports whether another user holds the lock. When who is
// not nil the lock owner is written to it whatever the result.
func (f *FileState) IsCheckedOutByOther(who *string) bool {
	if who != nil {
		*who = f.LockOwner
	}
	return f.Lock == LockedOther
}

// CanCheckout reports whether the file may be locked for editing. Out-of-date
// files cannot be checked out. Without locking there is no checkout step.
func (f *FileState) CanCheckout() bool {
	if !f.LockingEnabled {
		return false
	}
	return (f.WorkingCopy == StatusUnchanged || f.WorkingCopy == StatusModified) &&
		f.Lock == LockNone &&
		f.IsCurrent()
}

// CanCheckIn reports whether the file may be committed.
func (f *FileState) CanCheckIn() bool {
	if f.LockingEnabled {
		return ((f.Lock == LockedSelf && !f.IsConflicted()) || f.WorkingCopy == StatusAdded) &&
			f.IsCurrent()
	}
	switch f.WorkingCopy {
	case StatusAdded, StatusDeleted, StatusMissing, StatusModified, StatusRenamed:
		return f.IsCurrent()
	default:
		return false
	}
}

// CanAdd reports whether the file may be added to source control.
func (f *FileState) CanAdd() bool {
	return f.WorkingCopy == StatusNotControlled
}

// CanDelete reports whether the file may be deleted through source control.
func (f *FileState) CanDelete() bool {
	return !f.IsCheckedOutByOther(nil) && f.IsSourceControlled() && f.IsCurrent()
}

// CanEdit reports whether the file may be edited in place.
func (f *FileState) CanEdit() bool {
	return f.IsCurrent()
}

// CanRevert reports whether local changes may be reverted. Revert shares
// eligibility with check-in.
func (f *FileState) CanRevert() bool {
	return f.CanCheckIn()
}

// Capabilities is every predicate of a FileState evaluated at once.
type Capabilities struct {
	SourceControlled  bool `json:"source_controlled"`
	Current           bool `json:"current"`
	Added             bool `json:"added"`
	Deleted           bool `json:"deleted"`
	Ignored           bool `json:"ignored"`
	Unknown           bool `json:"unknown"`
	Conflicted        bool `json:"conflicted"`
	Modified          bool `json:"modified"`
	CheckedOut        bool `json:"checked_out"`
	CheckedOutByOther bool `json:"checked_out_by_other"`
	CanCheckout       bool `json:"can_checkout"`
	CanCheckIn        bool `json:"can_check_in"`
	CanAdd            bool `json:"can_add"`
	CanDelete         bool `json:"can_delete"`
	CanEdit           bool `json:"can_edit"`
	CanRevert         bool `json:"can_revert"`
}

// Capabilities evaluates every predicate.
func (f *FileState) Capabilities() Capabilities {
	return Capabilities{
		SourceControlled:  f.IsSourceControlled(),
		Current:           f.IsCurrent(),
		Added:             f.IsAdded(),
		Deleted:           f.IsDeleted(),
		Ignored:           f.IsIgnored(),
		Unknown:           f.IsUnknown(),
		Conflicted:        f.IsConflicted(),
		Modified:          f.IsModified(),
		CheckedOut:        f.IsCheckedOut(),
		CheckedOutByOther: f.IsCheckedOutByOther(nil),
		CanCheckout:       f.CanCheckout(),
		CanCheckIn:        f.CanCheckIn(),
		CanAdd:            f.CanAdd(),
		CanDelete:         f.CanDelete(),
		CanEdit:           f.CanEdit(),
		CanRevert:         f.CanRevert(),
	}
}
