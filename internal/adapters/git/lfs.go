package git

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xvierd/gitstate/internal/ports"
)

// LFSLocks implements ports.LockLister with `git lfs locks`.
type LFSLocks struct {
	runner Runner
	root   string
	user   string
}

// NewLFSLocks creates a lock lister for the worktree at root. A non-empty
// user overrides the git user.name as the identity that owns "our" locks.
func NewLFSLocks(runner Runner, root, user string) *LFSLocks {
	return &LFSLocks{runner: runner, root: root, user: strings.TrimSpace(user)}
}

// Ensure LFSLocks implements ports.LockLister.
var _ ports.LockLister = (*LFSLocks)(nil)

type lfsLock struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Owner struct {
		Name string `json:"name"`
	} `json:"owner"`
	LockedAt time.Time `json:"locked_at"`
}

// Locks returns every lock held on the remote.
func (l *LFSLocks) Locks(ctx context.Context) ([]ports.Lock, error) {
	out, err := l.runner.Run(ctx, l.root, "lfs", "locks", "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to list lfs locks: %w", err)
	}
	return parseLocks(out)
}

// CurrentUser returns the configured lock user, or git's user.name.
func (l *LFSLocks) CurrentUser(ctx context.Context) (string, error) {
	if l.user != "" {
		return l.user, nil
	}
	out, err := l.runner.Run(ctx, l.root, "config", "user.name")
	if err != nil {
		return "", fmt.Errorf("failed to read git user.name: %w", err)
	}
	name := strings.TrimSpace(out)
	if name == "" {
		return "", fmt.Errorf("git user.name is not set")
	}
	return name, nil
}

func parseLocks(out string) ([]ports.Lock, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}

	var raw []lfsLock
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse lfs locks: %w", err)
	}

	locks := make([]ports.Lock, 0, len(raw))
	for _, r := range raw {
		locks = append(locks, ports.Lock{
			ID:       r.ID,
			Path:     r.Path,
			Owner:    r.Owner.Name,
			LockedAt: r.LockedAt,
		})
	}
	return locks, nil
}
