package domain

import "fmt"

// HistorySize returns the number of recorded revisions.
func (f *FileState) HistorySize() int {
	return len(f.History)
}

// HistoryAt returns the revision at index. Callers are expected to stay within
// [0, HistorySize()); anything else is an error, never a zero revision.
func (f *FileState) HistoryAt(index int) (Revision, error) {
	if index < 0 || index >= len(f.History) {
		return Revision{}, fmt.Errorf("%w: index %d, size %d", ErrHistoryIndexOutOfRange, index, len(f.History))
	}
	return f.History[index], nil
}

// FindRevisionByNumber returns the first revision, in stored order, whose number is n.
func (f *FileState) FindRevisionByNumber(n int) (Revision, bool) {
	for _, rev := range f.History {
		if rev.Number == n {
			return rev, true
		}
	}
	return Revision{}, false
}

// FindRevisionByIdentifier returns the first revision, in stored order, with the given identifier.
func (f *FileState) FindRevisionByIdentifier(id string) (Revision, bool) {
	for _, rev := range f.History {
		if rev.Identifier == id {
			return rev, true
		}
	}
	return Revision{}, false
}

// BaseRevisionForMerge returns the revision whose file content is the merge
// base of a pending conflict. The match is on the blob hash, not the commit id.
func (f *FileState) BaseRevisionForMerge() (Revision, bool) {
	if f.WorkingCopy != StatusConflicted || f.PendingMergeBaseFileHash == "" {
		return Revision{}, false
	}
	for _, rev := range f.History {
		if rev.FileHash == f.PendingMergeBaseFileHash {
			return rev, true
		}
	}
	return Revision{}, false
}

// ResolveInfo returns the structured conflict description of a conflicted file.
// It returns PendingResolveInfo as recorded, except that a description with no
// known side is reported as absent rather than as an empty value.
func (f *FileState) ResolveInfo() (ResolveInfo, bool) {
	if f.WorkingCopy != StatusConflicted || !f.PendingResolveInfo.IsValid() {
		return ResolveInfo{}, false
	}
	return f.PendingResolveInfo, true
}
