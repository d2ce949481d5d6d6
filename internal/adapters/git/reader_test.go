package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xvierd/gitstate/internal/domain"
)

// fixture is a throwaway repository built with go-git.
type fixture struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
	when time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	return &fixture{t: t, dir: dir, repo: repo, wt: wt, when: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fixture) write(name, content string) {
	f.t.Helper()
	full := filepath.Join(f.dir, filepath.FromSlash(name))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(f.t, os.WriteFile(full, []byte(content), 0644))
}

func (f *fixture) add(name string) {
	f.t.Helper()
	_, err := f.wt.Add(name)
	require.NoError(f.t, err)
}

func (f *fixture) commit(msg string) plumbing.Hash {
	f.t.Helper()
	f.when = f.when.Add(time.Minute)
	h, err := f.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: f.when},
	})
	require.NoError(f.t, err)
	return h
}

func (f *fixture) open() *Reader {
	f.t.Helper()
	r, err := Open(f.dir, "")
	require.NoError(f.t, err)
	return r
}

func TestOpen_NoGitRepo(t *testing.T) {
	_, err := Open(t.TempDir(), "")
	assert.Error(t, err)
}

func TestOpen_FromSubdirectory(t *testing.T) {
	f := newFixture(t)
	f.write("Content/Maps/a.umap", "a")

	r, err := Open(filepath.Join(f.dir, "Content", "Maps"), "")
	require.NoError(t, err)

	want, _ := filepath.EvalSymlinks(f.dir)
	got, _ := filepath.EvalSymlinks(r.Root())
	assert.Equal(t, want, got)
}

func TestReader_Statuses(t *testing.T) {
	f := newFixture(t)
	f.write(".gitignore", "*.log\n")
	f.write("modified.txt", "v1")
	f.write("clean.txt", "v1")
	f.write("missing.txt", "v1")
	f.write("staged_delete.txt", "v1")
	f.add(".gitignore")
	f.add("modified.txt")
	f.add("clean.txt")
	f.add("missing.txt")
	f.add("staged_delete.txt")
	f.commit("initial")

	f.write("modified.txt", "v2")
	f.write("added.txt", "new")
	f.add("added.txt")
	f.write("untracked.txt", "?")
	f.write("debug.log", "noise")
	require.NoError(t, os.Remove(filepath.Join(f.dir, "missing.txt")))
	_, err := f.wt.Remove("staged_delete.txt")
	require.NoError(t, err)

	r := f.open()
	got, err := r.Statuses(context.Background(), []string{"clean.txt", "debug.log", "ghost.txt"})
	require.NoError(t, err)

	want := map[string]domain.WorkingCopyStatus{
		"modified.txt":      domain.StatusModified,
		"added.txt":         domain.StatusAdded,
		"untracked.txt":     domain.StatusNotControlled,
		"missing.txt":       domain.StatusMissing,
		"staged_delete.txt": domain.StatusDeleted,
		"clean.txt":         domain.StatusUnchanged,
		"debug.log":         domain.StatusIgnored,
		"ghost.txt":         domain.StatusUnknown,
	}
	assert.Equal(t, want, got)
}

func TestReader_Statuses_AbsolutePath(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a")
	f.add("a.txt")
	f.commit("initial")

	r := f.open()
	got, err := r.Statuses(context.Background(), []string{filepath.Join(r.Root(), "a.txt")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnchanged, got["a.txt"])

	_, err = r.Statuses(context.Background(), []string{"/definitely/elsewhere.txt"})
	assert.Error(t, err)
}

func TestReader_Statuses_RelativePathOutsideRepository(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "repo")
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("s"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "..notes.txt"), []byte("n"), 0644))

	r, err := Open(dir, "")
	require.NoError(t, err)

	for _, p := range []string{"../secret.txt", "sub/../../secret.txt", ".."} {
		got, err := r.Statuses(context.Background(), []string{p})
		assert.ErrorIs(t, err, domain.ErrFileStateNotFound, "path %q", p)
		assert.Nil(t, got)
	}

	got, err := r.Statuses(context.Background(), []string{"..notes.txt"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotControlled, got["..notes.txt"])
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		name     string
		staging  git.StatusCode
		worktree git.StatusCode
		want     domain.WorkingCopyStatus
	}{
		{"unmerged", git.UpdatedButUnmerged, git.UpdatedButUnmerged, domain.StatusConflicted},
		{"untracked", git.Untracked, git.Untracked, domain.StatusNotControlled},
		{"staged add", git.Added, git.Modified, domain.StatusAdded},
		{"staged delete", git.Deleted, git.Unmodified, domain.StatusDeleted},
		{"worktree delete", git.Unmodified, git.Deleted, domain.StatusMissing},
		{"renamed", git.Renamed, git.Unmodified, domain.StatusRenamed},
		{"copied", git.Copied, git.Unmodified, domain.StatusCopied},
		{"staged modify", git.Modified, git.Unmodified, domain.StatusModified},
		{"worktree modify", git.Unmodified, git.Modified, domain.StatusModified},
		{"clean", git.Unmodified, git.Unmodified, domain.StatusUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapStatus(&git.FileStatus{Staging: tt.staging, Worktree: tt.worktree})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_OutdatedPaths(t *testing.T) {
	f := newFixture(t)
	f.write("stable.txt", "s")
	f.write("hot.uasset", "v1")
	f.add("stable.txt")
	f.add("hot.uasset")
	base := f.commit("initial")

	f.write("hot.uasset", "v2")
	f.add("hot.uasset")
	f.write("brand_new.txt", "n")
	f.add("brand_new.txt")
	upstream := f.commit("remote work")

	head, err := f.repo.Head()
	require.NoError(t, err)
	remoteRef := plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", head.Name().Short()), upstream)
	require.NoError(t, f.repo.Storer.SetReference(remoteRef))
	require.NoError(t, f.wt.Reset(&git.ResetOptions{Commit: base, Mode: git.HardReset}))

	r := f.open()
	got, err := r.OutdatedPaths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"hot.uasset": true, "brand_new.txt": true}, got)
}

func TestReader_OutdatedPaths_NoUpstream(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a")
	f.add("a.txt")
	f.commit("initial")

	got, err := f.open().OutdatedPaths(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReader_OutdatedPaths_EmptyRepository(t *testing.T) {
	f := newFixture(t)

	got, err := f.open().OutdatedPaths(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReader_History(t *testing.T) {
	f := newFixture(t)
	f.write("other.txt", "x")
	f.add("other.txt")
	f.commit("unrelated")

	f.write("a.txt", "one")
	f.add("a.txt")
	first := f.commit("add a")

	f.write("a.txt", "two!")
	f.add("a.txt")
	second := f.commit("edit a\n\nlonger body")

	_, err := f.wt.Remove("a.txt")
	require.NoError(t, err)
	third := f.commit("drop a")

	r := f.open()
	revs, err := r.History(context.Background(), "a.txt", 0)
	require.NoError(t, err)
	require.Len(t, revs, 3)

	assert.Equal(t, third.String(), revs[0].Identifier)
	assert.Equal(t, 3, revs[0].Number)
	assert.Equal(t, domain.ActionDelete, revs[0].Action)
	assert.Empty(t, revs[0].FileHash)

	assert.Equal(t, second.String(), revs[1].Identifier)
	assert.Equal(t, domain.ActionModify, revs[1].Action)
	assert.Equal(t, "edit a", revs[1].Description)
	assert.Equal(t, int64(4), revs[1].FileSize)

	assert.Equal(t, first.String(), revs[2].Identifier)
	assert.Equal(t, 1, revs[2].Number)
	assert.Equal(t, domain.ActionAdd, revs[2].Action)
	assert.Equal(t, "Test User", revs[2].Author)
	assert.NotEmpty(t, revs[2].FileHash)

	limited, err := r.History(context.Background(), "a.txt", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, 2, limited[0].Number)
	assert.Equal(t, 1, limited[1].Number)
	assert.Equal(t, third.String(), limited[0].Identifier)
}

func TestReader_History_EmptyRepository(t *testing.T) {
	f := newFixture(t)

	revs, err := f.open().History(context.Background(), "a.txt", 10)
	require.NoError(t, err)
	assert.Empty(t, revs)
}

func TestReader_Conflict(t *testing.T) {
	f := newFixture(t)
	f.write("map.umap", "base")
	f.add("map.umap")
	baseCommit := f.commit("base")

	c, err := f.repo.CommitObject(baseCommit)
	require.NoError(t, err)
	baseFile, err := c.File("map.umap")
	require.NoError(t, err)

	f.write("map.umap", "theirs")
	f.add("map.umap")
	theirs := f.commit("theirs")

	require.NoError(t, f.wt.Reset(&git.ResetOptions{Commit: baseCommit, Mode: git.HardReset}))
	f.write("map.umap", "ours")
	f.add("map.umap")
	f.commit("ours")

	idx, err := f.repo.Storer.Index()
	require.NoError(t, err)
	var kept []*index.Entry
	for _, e := range idx.Entries {
		if e.Name != "map.umap" {
			kept = append(kept, e)
		}
	}
	for _, stage := range []index.Stage{index.AncestorMode, index.OurMode, index.TheirMode} {
		kept = append(kept, &index.Entry{Name: "map.umap", Hash: baseFile.Hash, Stage: stage, Mode: baseFile.Mode})
	}
	idx.Entries = kept
	require.NoError(t, f.repo.Storer.SetIndex(idx))
	require.NoError(t, f.repo.Storer.SetReference(plumbing.NewHashReference("MERGE_HEAD", theirs)))

	r := f.open()
	info, err := r.Conflict(context.Background(), "map.umap")
	require.NoError(t, err)

	assert.Equal(t, baseFile.Hash.String(), info.BaseFileHash)
	assert.Equal(t, "map.umap", info.Resolve.BaseFile)
	assert.Equal(t, "map.umap", info.Resolve.RemoteFile)
	assert.Equal(t, theirs.String(), info.Resolve.RemoteRevision)
	assert.Equal(t, baseCommit.String(), info.Resolve.BaseRevision)
	assert.True(t, info.Resolve.IsValid())
}

func TestReader_Conflict_NothingInProgress(t *testing.T) {
	f := newFixture(t)
	f.write("a.txt", "a")
	f.add("a.txt")
	f.commit("initial")

	info, err := f.open().Conflict(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Empty(t, info.BaseFileHash)
	assert.False(t, info.Resolve.IsValid())
}
