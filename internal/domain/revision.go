package domain

import "time"

// RevisionAction describes what a revision did to the file.
type RevisionAction string

const (
	ActionAdd    RevisionAction = "add"
	ActionModify RevisionAction = "modify"
	ActionDelete RevisionAction = "delete"
)

// Revision is one entry of a file's history. Revisions are values and are never
// modified after they are recorded.
type Revision struct {
	Number      int            `json:"number"`
	Identifier  string         `json:"identifier"` // commit hash
	FileHash    string         `json:"file_hash"`  // blob hash of the file at this revision
	Filename    string         `json:"filename"`
	Author      string         `json:"author"`
	Date        time.Time      `json:"date"`
	Description string         `json:"description"`
	Action      RevisionAction `json:"action"`
	FileSize    int64          `json:"file_size"`
}

// ShortIdentifier returns the first seven characters of the identifier.
func (r Revision) ShortIdentifier() string {
	if len(r.Identifier) > 7 {
		return r.Identifier[:7]
	}
	return r.Identifier
}

// ResolveInfo identifies the common ancestor and the incoming side of a merge conflict.
type ResolveInfo struct {
	BaseFile       string `json:"base_file"`
	BaseRevision   string `json:"base_revision"`
	RemoteFile     string `json:"remote_file"`
	RemoteRevision string `json:"remote_revision"`
}

// IsValid reports whether any side of the conflict is known.
func (r ResolveInfo) IsValid() bool {
	return r.BaseRevision != "" || r.RemoteRevision != ""
}
