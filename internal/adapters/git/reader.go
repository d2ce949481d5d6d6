// Package git reads working-copy state with go-git and queries remote locks
// through the git binary.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/ports"
)

// DefaultRemote is the remote whose tracking branches define "newer on remote".
const DefaultRemote = "origin"

// mergeHeads are the pseudo-refs naming the incoming side of an interrupted operation.
var mergeHeads = []plumbing.ReferenceName{"MERGE_HEAD", "CHERRY_PICK_HEAD", "REBASE_HEAD"}

// Reader implements the ports.WorkingCopyReader interface using go-git.
type Reader struct {
	root   string
	remote string
	repo   *git.Repository
}

// Ensure Reader implements ports.WorkingCopyReader.
var _ ports.WorkingCopyReader = (*Reader)(nil)

// Open finds the repository containing workingDir and opens it.
// An empty workingDir means the current directory.
func Open(workingDir, remote string) (*Reader, error) {
	if workingDir == "" {
		var err error
		workingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", workingDir, err)
	}

	root, err := findGitRepo(abs)
	if err != nil {
		return nil, fmt.Errorf("git repository not found: %w", err)
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	if strings.TrimSpace(remote) == "" {
		remote = DefaultRemote
	}
	return &Reader{root: root, remote: remote, repo: repo}, nil
}

// Root returns the absolute path of the worktree.
func (r *Reader) Root() string {
	return r.root
}

// Statuses returns the status of every changed path plus each requested path.
func (r *Reader) Statuses(ctx context.Context, paths []string) (map[string]domain.WorkingCopyStatus, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make(map[string]domain.WorkingCopyStatus, len(status))
	for path, fs := range status {
		if s := mapStatus(fs); s != domain.StatusUnchanged {
			result[path] = s
		}
	}

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	indexed := make(map[string]bool, len(idx.Entries))
	for _, e := range idx.Entries {
		indexed[e.Name] = true
		if isConflictStage(e.Stage) {
			result[e.Name] = domain.StatusConflicted
		}
	}

	if len(paths) == 0 {
		return result, nil
	}

	var matcher gitignore.Matcher
	for _, p := range paths {
		rel, err := r.relative(p)
		if err != nil {
			return nil, err
		}
		if _, ok := result[rel]; ok {
			continue
		}
		if indexed[rel] {
			result[rel] = domain.StatusUnchanged
			continue
		}

		info, statErr := os.Stat(filepath.Join(r.root, filepath.FromSlash(rel)))
		if matcher == nil {
			patterns, err := gitignore.ReadPatterns(wt.Filesystem, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to read ignore rules: %w", err)
			}
			matcher = gitignore.NewMatcher(append(patterns, wt.Excludes...))
		}
		switch {
		case matcher.Match(strings.Split(rel, "/"), statErr == nil && info.IsDir()):
			result[rel] = domain.StatusIgnored
		case statErr == nil:
			result[rel] = domain.StatusNotControlled
		default:
			result[rel] = domain.StatusUnknown
		}
	}
	return result, nil
}

// mapStatus translates a go-git status pair into a working-copy status.
func mapStatus(fs *git.FileStatus) domain.WorkingCopyStatus {
	switch {
	case fs.Staging == git.UpdatedButUnmerged || fs.Worktree == git.UpdatedButUnmerged:
		return domain.StatusConflicted
	case fs.Staging == git.Untracked || fs.Worktree == git.Untracked:
		return domain.StatusNotControlled
	case fs.Staging == git.Added:
		return domain.StatusAdded
	case fs.Staging == git.Deleted:
		return domain.StatusDeleted
	case fs.Worktree == git.Deleted:
		return domain.StatusMissing
	case fs.Staging == git.Renamed || fs.Worktree == git.Renamed:
		return domain.StatusRenamed
	case fs.Staging == git.Copied || fs.Worktree == git.Copied:
		return domain.StatusCopied
	case fs.Staging == git.Modified || fs.Worktree == git.Modified:
		return domain.StatusModified
	default:
		return domain.StatusUnchanged
	}
}

func isConflictStage(s index.Stage) bool {
	return s == index.AncestorMode || s == index.OurMode || s == index.TheirMode
}

// relative converts p to a slash-separated path relative to the worktree root.
func (r *Reader) relative(p string) (string, error) {
	return domain.RepoPath(r.root, p)
}

// OutdatedPaths returns the paths the upstream branch changed since the merge base.
func (r *Reader) OutdatedPaths(ctx context.Context) (map[string]bool, error) {
	outdated := make(map[string]bool)

	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return outdated, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return outdated, nil
	}

	upstreamName := plumbing.NewRemoteReferenceName(r.remote, head.Name().Short())
	upstream, err := r.repo.Reference(upstreamName, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return outdated, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", upstreamName, err)
	}
	if upstream.Hash() == head.Hash() {
		return outdated, nil
	}

	local, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	remote, err := r.repo.CommitObject(upstream.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get upstream commit: %w", err)
	}

	bases, err := local.MergeBase(remote)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merge base: %w", err)
	}
	if len(bases) == 0 {
		return outdated, nil
	}

	baseTree, err := bases[0].Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get merge base tree: %w", err)
	}
	remoteTree, err := remote.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get upstream tree: %w", err)
	}

	changes, err := baseTree.DiffContext(ctx, remoteTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff upstream: %w", err)
	}
	for _, ch := range changes {
		if ch.From.Name != "" {
			outdated[ch.From.Name] = true
		}
		if ch.To.Name != "" {
			outdated[ch.To.Name] = true
		}
	}
	return outdated, nil
}

// History returns up to limit revisions of path, newest first, numbered so the
// oldest returned revision is 1. History is safe for concurrent use; each call
// reads through its own repository handle.
func (r *Reader) History(ctx context.Context, path string, limit int) ([]domain.Revision, error) {
	rel, err := r.relative(path)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	head, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), FileName: &rel})
	if err != nil {
		return nil, fmt.Errorf("failed to read log of %s: %w", rel, err)
	}
	defer iter.Close()

	var revs []domain.Revision
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rev, err := revisionOf(c, rel)
		if err != nil {
			return err
		}
		revs = append(revs, rev)
		if limit > 0 && len(revs) >= limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history of %s: %w", rel, err)
	}

	for i := range revs {
		revs[i].Number = len(revs) - i
	}
	return revs, nil
}

func revisionOf(c *object.Commit, path string) (domain.Revision, error) {
	rev := domain.Revision{
		Identifier:  c.Hash.String(),
		Filename:    path,
		Author:      c.Author.Name,
		Date:        c.Author.When,
		Description: strings.TrimSpace(strings.SplitN(c.Message, "\n", 2)[0]),
	}

	f, err := c.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		rev.Action = domain.ActionDelete
		return rev, nil
	}
	if err != nil {
		return rev, fmt.Errorf("failed to read %s at %s: %w", path, c.Hash, err)
	}
	rev.FileHash = f.Hash.String()
	rev.FileSize = f.Size
	rev.Action = domain.ActionAdd

	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return rev, fmt.Errorf("failed to get parent of %s: %w", c.Hash, err)
		}
		if _, err := parent.File(path); err == nil {
			rev.Action = domain.ActionModify
		}
	}
	return rev, nil
}

// Conflict returns the merge data of a conflicted path. Sides the index or
// the pseudo-refs do not record are left empty.
func (r *Reader) Conflict(ctx context.Context, path string) (*ports.ConflictInfo, error) {
	rel, err := r.relative(path)
	if err != nil {
		return nil, err
	}

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	info := &ports.ConflictInfo{}
	for _, e := range idx.Entries {
		if e.Name != rel {
			continue
		}
		switch e.Stage {
		case index.AncestorMode:
			info.BaseFileHash = e.Hash.String()
			info.Resolve.BaseFile = rel
		case index.TheirMode:
			info.Resolve.RemoteFile = rel
		}
	}

	incoming, err := r.incomingHead()
	if err != nil || incoming == nil {
		return info, err
	}
	info.Resolve.RemoteRevision = incoming.Hash().String()

	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	ours, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	theirs, err := r.repo.CommitObject(incoming.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get incoming commit: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bases, err := ours.MergeBase(theirs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merge base: %w", err)
	}
	if len(bases) > 0 {
		info.Resolve.BaseRevision = bases[0].Hash.String()
	}
	return info, nil
}

// incomingHead returns the first pseudo-ref naming an in-progress merge,
// cherry-pick or rebase, or nil when none is in progress.
func (r *Reader) incomingHead() (*plumbing.Reference, error) {
	for _, name := range mergeHeads {
		ref, err := r.repo.Reference(name, true)
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return ref, nil
	}
	return nil, nil
}

// findGitRepo traverses up the directory tree to find a .git directory.
func findGitRepo(startPath string) (string, error) {
	currentPath := startPath

	for {
		gitPath := filepath.Join(currentPath, ".git")
		info, err := os.Stat(gitPath)
		if err == nil && info.IsDir() {
			return currentPath, nil
		}

		// A worktree or submodule keeps a file pointing at the real git dir.
		if err == nil && !info.IsDir() {
			content, err := os.ReadFile(gitPath)
			if err == nil && strings.HasPrefix(string(content), "gitdir: ") {
				return currentPath, nil
			}
		}

		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			break
		}
		currentPath = parent
	}

	return "", fmt.Errorf("no .git directory found")
}
