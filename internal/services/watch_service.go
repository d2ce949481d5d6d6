package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/logging"
	"github.com/xvierd/gitstate/internal/ports"
)

// DefaultWatchDebounce is the debounce window for watcher events.
const DefaultWatchDebounce = 600 * time.Millisecond

// RefreshFunc receives each snapshot published by the watcher together with
// the transitions since the previous one.
type RefreshFunc func(snap *domain.Snapshot, transitions []domain.Transition)

// WatchService refreshes the status whenever the worktree or its git
// directory changes and reports notable transitions.
type WatchService struct {
	status   *StatusService
	notifier ports.Notifier
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	paths   map[string]struct{}
	gitDir  string
}

// NewWatchService creates a new watch service. notifier may be nil.
func NewWatchService(status *StatusService, notifier ports.Notifier, debounce time.Duration, logger *log.Logger) *WatchService {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &WatchService{
		status:   status,
		notifier: notifier,
		debounce: debounce,
		logger:   logger,
		gitDir:   filepath.Join(status.Root(), ".git"),
	}
}

// Poll refreshes once and reports the transitions since the last snapshot.
func (w *WatchService) Poll(ctx context.Context) (*domain.Snapshot, []domain.Transition, error) {
	prev := w.status.Snapshot()
	snap, err := w.status.Refresh(ctx, RefreshRequest{Carry: prev.Paths()})
	if err != nil {
		return nil, nil, err
	}

	transitions := domain.DiffSnapshots(prev, snap)
	if w.notifier != nil {
		for _, t := range transitions {
			if err := w.notifier.NotifyTransition(t); err != nil {
				w.logger.Warn("notification failed", "path", t.Path, "kind", t.Kind, "err", err)
			}
		}
	}
	return snap, transitions, nil
}

// Run watches until ctx is done. It refreshes once up front, then again after
// each burst of file-system events has been quiet for the debounce window.
func (w *WatchService) Run(ctx context.Context, onRefresh RefreshFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	w.mu.Lock()
	w.watcher = watcher
	w.paths = make(map[string]struct{})
	w.mu.Unlock()

	w.addWatchTree(w.status.Root())
	w.addWatchDir(w.gitDir)
	w.addWatchTree(filepath.Join(w.gitDir, "refs"))

	w.refresh(ctx, onRefresh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watcher error", "err", err)
		case <-timer.C:
			w.refresh(ctx, onRefresh)
		}
	}
}

func (w *WatchService) refresh(ctx context.Context, onRefresh RefreshFunc) {
	snap, transitions, err := w.Poll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("refresh failed", "err", err)
		}
		return
	}
	if onRefresh != nil {
		onRefresh(snap, transitions)
	}
}

// relevant drops events that cannot change the status, such as git's own
// lock files and object writes.
func (w *WatchService) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasSuffix(event.Name, ".lock") {
		return false
	}
	objects := filepath.Join(w.gitDir, "objects")
	return event.Name != objects && !strings.HasPrefix(event.Name, objects+string(filepath.Separator))
}

func (w *WatchService) maybeWatchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addWatchTree(path)
}

func (w *WatchService) addWatchDir(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.paths[path]; ok {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		w.logger.Debug("watch failed", "path", path, "err", err)
		return
	}
	w.paths[path] = struct{}{}
}

// addWatchTree watches root and its subdirectories. The git directory is
// skipped; its interesting parts are added explicitly.
func (w *WatchService) addWatchTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path == w.gitDir && root != w.gitDir && !strings.HasPrefix(root, w.gitDir) {
			return filepath.SkipDir
		}
		w.addWatchDir(path)
		return nil
	})
}

// Watched returns the number of directories being watched.
func (w *WatchService) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}
