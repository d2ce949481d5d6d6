package ports

import (
	"context"

	"github.com/xvierd/gitstate/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// StateFilter narrows a listing of file states.
type StateFilter struct {
	// Query fuzzy-matches paths. Empty matches everything.
	Query string
	// ModifiedOnly keeps only files with changes to commit.
	ModifiedOnly bool
}

// MergeInfo is the answer to a merge-info query for one path.
type MergeInfo struct {
	Path         string              `json:"path"`
	Mode         string              `json:"mode"`
	Conflicted   bool                `json:"conflicted"`
	BaseRevision *domain.Revision    `json:"base_revision,omitempty"`
	Resolve      *domain.ResolveInfo `json:"resolve,omitempty"`
}

// StateProvider provides file-state information to the MCP server.
// This is a driven port (implemented by services layer).
type StateProvider interface {
	// GetFileState returns the current state of one path.
	GetFileState(ctx context.Context, path string) (*domain.FileState, error)

	// ListFileStates returns the current states matching filter.
	ListFileStates(ctx context.Context, filter StateFilter) ([]*domain.FileState, error)

	// Refresh re-reads the working copy and returns the new snapshot.
	Refresh(ctx context.Context) (*domain.Snapshot, error)

	// GetFileHistory returns up to limit revisions of path, newest first.
	GetFileHistory(ctx context.Context, path string, limit int) ([]domain.Revision, error)

	// GetMergeInfo returns the merge base and incoming side of a conflicted path.
	GetMergeInfo(ctx context.Context, path string) (*MergeInfo, error)

	// GetCheckInCandidates returns the files that belong in the next commit.
	GetCheckInCandidates(ctx context.Context) ([]*domain.FileState, error)
}
