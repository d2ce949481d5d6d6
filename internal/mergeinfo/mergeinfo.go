// Package mergeinfo answers merge-conflict queries for a FileState.
// Two modes exist: legacy locates the merge base by scanning the history for the
// base blob hash, resolve reads the structured conflict record directly.
// Callers pick the mode once at startup and query through the Mode interface
// instead of branching on the mode everywhere.
package mergeinfo

import (
	"fmt"
	"strings"

	"github.com/xvierd/gitstate/internal/domain"
)

// Mode names.
const (
	Legacy  = "legacy"
	Resolve = "resolve"
)

// Names lists every supported mode.
var Names = []string{Resolve, Legacy}

// Mode defines the interface for mode-specific merge-info behavior.
type Mode interface {
	// Name returns the mode identifier.
	Name() string

	// Record stores on fs the conflict data this mode answers from.
	// It is a no-op unless fs is conflicted.
	Record(fs *domain.FileState, baseFileHash string, info domain.ResolveInfo)

	// BaseRevision returns the history entry of the merge base.
	BaseRevision(fs *domain.FileState) (domain.Revision, bool)

	// ResolveInfo returns both sides of the pending conflict.
	ResolveInfo(fs *domain.FileState) (domain.ResolveInfo, bool)
}

// ForMode returns the Mode implementation for name. An empty name selects resolve.
func ForMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Resolve, "":
		return resolveMode{}, nil
	case Legacy:
		return legacyMode{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s)", domain.ErrInvalidMergeInfoMode, name, strings.Join(Names, " or "))
	}
}

// --- Legacy Mode ---

type legacyMode struct{}

func (legacyMode) Name() string { return Legacy }

func (legacyMode) Record(fs *domain.FileState, baseFileHash string, _ domain.ResolveInfo) {
	if fs.IsConflicted() {
		fs.PendingMergeBaseFileHash = baseFileHash
	}
}

func (legacyMode) BaseRevision(fs *domain.FileState) (domain.Revision, bool) {
	return fs.BaseRevisionForMerge()
}

// ResolveInfo only knows the base side; the remote side is not recorded in legacy mode.
func (m legacyMode) ResolveInfo(fs *domain.FileState) (domain.ResolveInfo, bool) {
	rev, ok := m.BaseRevision(fs)
	if !ok {
		return domain.ResolveInfo{}, false
	}
	name := rev.Filename
	if name == "" {
		name = fs.Path
	}
	return domain.ResolveInfo{BaseFile: name, BaseRevision: rev.Identifier}, true
}

// --- Resolve Mode ---

type resolveMode struct{}

func (resolveMode) Name() string { return Resolve }

func (resolveMode) Record(fs *domain.FileState, _ string, info domain.ResolveInfo) {
	if fs.IsConflicted() {
		fs.PendingResolveInfo = info
	}
}

func (resolveMode) BaseRevision(fs *domain.FileState) (domain.Revision, bool) {
	info, ok := fs.ResolveInfo()
	if !ok || info.BaseRevision == "" {
		return domain.Revision{}, false
	}
	return fs.FindRevisionByIdentifier(info.BaseRevision)
}

func (resolveMode) ResolveInfo(fs *domain.FileState) (domain.ResolveInfo, bool) {
	return fs.ResolveInfo()
}
