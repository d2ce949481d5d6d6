package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the complete result of one status refresh. It is built once and
// published as a whole; readers must never modify it.
type Snapshot struct {
	ID      string
	Root    string
	TakenAt time.Time
	States  map[string]*FileState
}

// NewSnapshot creates a snapshot of states for the repository at root.
// Later entries for the same path replace earlier ones.
func NewSnapshot(root string, states []*FileState) *Snapshot {
	byPath := make(map[string]*FileState, len(states))
	for _, st := range states {
		byPath[st.Path] = st
	}
	return &Snapshot{
		ID:      uuid.New().String(),
		Root:    root,
		TakenAt: time.Now(),
		States:  byPath,
	}
}

// Get returns the state recorded for path.
func (s *Snapshot) Get(path string) (*FileState, bool) {
	if s == nil {
		return nil, false
	}
	st, ok := s.States[path]
	return st, ok
}

// Paths returns every recorded path in lexical order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.States))
	for p := range s.States {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Sorted returns every state ordered by path.
func (s *Snapshot) Sorted() []*FileState {
	paths := s.Paths()
	states := make([]*FileState, 0, len(paths))
	for _, p := range paths {
		states = append(states, s.States[p])
	}
	return states
}

// Len returns the number of recorded states.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.States)
}

// TransitionKind names a change between two snapshots worth telling the user about.
type TransitionKind string

const (
	TransitionLockedByOther TransitionKind = "locked_by_other"
	TransitionOutdated      TransitionKind = "outdated"
	TransitionConflicted    TransitionKind = "conflicted"
)

// Transition is a notable state change of one path.
type Transition struct {
	Kind  TransitionKind
	Path  string
	Owner string
}

// DiffSnapshots reports the paths of next that became locked by another user,
// outdated or conflicted since prev. A nil prev reports nothing.
func DiffSnapshots(prev, next *Snapshot) []Transition {
	if prev == nil || next == nil {
		return nil
	}

	var transitions []Transition
	for _, path := range next.Paths() {
		cur := next.States[path]
		old, existed := prev.States[path]

		if cur.IsCheckedOutByOther(nil) && (!existed || !old.IsCheckedOutByOther(nil) || old.LockOwner != cur.LockOwner) {
			transitions = append(transitions, Transition{Kind: TransitionLockedByOther, Path: path, Owner: cur.LockOwner})
		}
		if !cur.IsCurrent() && (!existed || old.IsCurrent()) {
			transitions = append(transitions, Transition{Kind: TransitionOutdated, Path: path})
		}
		if cur.IsConflicted() && (!existed || !old.IsConflicted()) {
			transitions = append(transitions, Transition{Kind: TransitionConflicted, Path: path})
		}
	}
	return transitions
}
