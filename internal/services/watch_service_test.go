package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/ports"
)

type recordingNotifier struct {
	mu          sync.Mutex
	transitions []domain.Transition
	err         error
}

func (r *recordingNotifier) NotifyTransition(t domain.Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transitions)
}

func TestWatchService_Poll(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader("/repo")
	reader.statuses["Content/Hero.uasset"] = domain.StatusModified
	locks := &fakeLocks{user: "alice"}

	status := NewStatusService(reader, nil, StatusOptions{LockingEnabled: true}, nil)
	status.SetLockLister(locks)
	notifier := &recordingNotifier{}
	watch := NewWatchService(status, notifier, 0, nil)

	t.Run("first poll reports nothing", func(t *testing.T) {
		_, transitions, err := watch.Poll(ctx)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if len(transitions) != 0 || notifier.count() != 0 {
			t.Errorf("Poll() = %v, want no transitions", transitions)
		}
	})

	t.Run("changes are notified", func(t *testing.T) {
		reader.mu.Lock()
		reader.outdated["Content/Hero.uasset"] = true
		reader.statuses["Config/Game.ini"] = domain.StatusConflicted
		reader.mu.Unlock()
		locks.locks = []ports.Lock{{Path: "Content/Map.umap", Owner: "bob"}}

		snap, transitions, err := watch.Poll(ctx)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if snap.Len() != 3 {
			t.Errorf("Len() = %d, want 3", snap.Len())
		}

		want := []domain.Transition{
			{Kind: domain.TransitionConflicted, Path: "Config/Game.ini"},
			{Kind: domain.TransitionOutdated, Path: "Content/Hero.uasset"},
			{Kind: domain.TransitionLockedByOther, Path: "Content/Map.umap", Owner: "bob"},
		}
		if len(transitions) != len(want) {
			t.Fatalf("Poll() = %v, want %v", transitions, want)
		}
		for i := range want {
			if transitions[i] != want[i] {
				t.Errorf("transition %d = %+v, want %+v", i, transitions[i], want[i])
			}
		}
		if notifier.count() != len(want) {
			t.Errorf("notified %d times, want %d", notifier.count(), len(want))
		}
	})

	t.Run("steady state is quiet", func(t *testing.T) {
		_, transitions, err := watch.Poll(ctx)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if len(transitions) != 0 {
			t.Errorf("Poll() = %v, want none", transitions)
		}
	})
}

func TestWatchService_Poll_DropsPathsGitForgot(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader("/repo")
	reader.statuses["Content/Old.uasset"] = domain.StatusDeleted
	watch := NewWatchService(NewStatusService(reader, nil, StatusOptions{}, nil), nil, 0, nil)

	snap, _, err := watch.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if st, ok := snap.Get("Content/Old.uasset"); !ok || st.WorkingCopy != domain.StatusDeleted {
		t.Fatalf("staged deletion not reported: %v", st)
	}

	// The deletion is committed.
	reader.mu.Lock()
	delete(reader.statuses, "Content/Old.uasset")
	reader.gone["Content/Old.uasset"] = true
	reader.mu.Unlock()

	for i := 0; i < 2; i++ {
		snap, _, err = watch.Poll(ctx)
		if err != nil {
			t.Fatalf("Poll() error = %v", err)
		}
		if snap.Len() != 0 {
			t.Errorf("poll %d: Len() = %d, want 0 once the deletion is committed", i, snap.Len())
		}
	}
}

func TestWatchService_Poll_NotifierFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	reader := newFakeReader("/repo")
	status := NewStatusService(reader, nil, StatusOptions{}, nil)
	watch := NewWatchService(status, &recordingNotifier{err: errors.New("no bus")}, 0, nil)

	if _, _, err := watch.Poll(ctx); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	reader.mu.Lock()
	reader.statuses["a.txt"] = domain.StatusConflicted
	reader.mu.Unlock()

	_, transitions, err := watch.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(transitions) != 1 {
		t.Errorf("Poll() = %v, want one transition", transitions)
	}
}

func TestWatchService_Run(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git", "refs", "heads"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "Content"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	reader := newFakeReader(root)
	status := NewStatusService(reader, nil, StatusOptions{}, nil)
	watch := NewWatchService(status, nil, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshed := make(chan *domain.Snapshot, 8)
	done := make(chan error, 1)
	go func() {
		done <- watch.Run(ctx, func(snap *domain.Snapshot, _ []domain.Transition) {
			refreshed <- snap
		})
	}()

	select {
	case <-refreshed:
	case <-time.After(5 * time.Second):
		t.Fatal("no initial refresh")
	}
	if watch.Watched() < 4 {
		t.Errorf("Watched() = %d, want root, Content, .git and refs", watch.Watched())
	}

	if err := os.WriteFile(filepath.Join(root, "Content", "Hero.uasset"), []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case <-refreshed:
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh after a file change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop")
	}
}

func TestWatchService_Relevant(t *testing.T) {
	status := NewStatusService(newFakeReader("/repo"), nil, StatusOptions{}, nil)
	watch := NewWatchService(status, nil, 0, nil)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"worktree write", fsnotify.Event{Name: "/repo/a.txt", Op: fsnotify.Write}, true},
		{"index update", fsnotify.Event{Name: "/repo/.git/index", Op: fsnotify.Create}, true},
		{"chmod only", fsnotify.Event{Name: "/repo/a.txt", Op: fsnotify.Chmod}, false},
		{"git lock file", fsnotify.Event{Name: "/repo/.git/index.lock", Op: fsnotify.Create}, false},
		{"object write", fsnotify.Event{Name: "/repo/.git/objects/ab/cdef", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := watch.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}
