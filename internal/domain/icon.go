package domain

// IconKey is a symbolic icon name. Hosts map keys to their own visual resources.
type IconKey string

const (
	IconNone                IconKey = ""
	IconCheckedOut          IconKey = "checked_out"
	IconCheckedOutByOther   IconKey = "checked_out_by_other"
	IconNotAtHeadRevision   IconKey = "not_at_head_revision"
	IconNotInDepot          IconKey = "not_in_depot"
	IconOpenForAdd          IconKey = "open_for_add"
	IconBranched            IconKey = "branched"
	IconMarkedForDelete     IconKey = "marked_for_delete"
	IconModifiedOtherBranch IconKey = "modified_other_branch"
)

// IconKeys lists every non-empty icon key.
var IconKeys = []IconKey{
	IconCheckedOut,
	IconCheckedOutByOther,
	IconNotAtHeadRevision,
	IconNotInDepot,
	IconOpenForAdd,
	IconBranched,
	IconMarkedForDelete,
	IconModifiedOtherBranch,
}

// IconKey selects the icon for the state, using the DisplayName precedence.
func (f *FileState) IconKey() IconKey {
	switch {
	case f.Lock == LockedSelf:
		return IconCheckedOut
	case f.Lock == LockedOther:
		return IconCheckedOutByOther
	case !f.IsCurrent():
		return IconNotAtHeadRevision
	}

	switch f.WorkingCopy {
	case StatusModified:
		// Under locking, a modified file without our lock is flagged apart.
		if f.LockingEnabled {
			return IconNotInDepot
		}
		return IconCheckedOut
	case StatusAdded:
		return IconOpenForAdd
	case StatusRenamed, StatusCopied:
		return IconBranched
	case StatusDeleted, StatusMissing:
		return IconMarkedForDelete
	case StatusConflicted:
		return IconModifiedOtherBranch
	case StatusNotControlled:
		return IconNotInDepot
	default:
		// Unknown, Unchanged and Ignored have no icon.
		return IconNone
	}
}
