package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/xvierd/gitstate/internal/domain"
)

// Mock implementations for testing interfaces.

type mockStateRepository struct {
	snapshots map[string]*domain.Snapshot
}

func (m *mockStateRepository) ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	m.snapshots[snap.Root] = snap
	return nil
}

func (m *mockStateRepository) LatestSnapshot(ctx context.Context, root string) (*domain.Snapshot, error) {
	snap, ok := m.snapshots[root]
	if !ok {
		return nil, domain.ErrNoSnapshot
	}
	return snap, nil
}

var _ StateRepository = (*mockStateRepository)(nil)

func TestMockStateRepository(t *testing.T) {
	repo := &mockStateRepository{snapshots: make(map[string]*domain.Snapshot)}
	ctx := context.Background()

	t.Run("no snapshot yet", func(t *testing.T) {
		_, err := repo.LatestSnapshot(ctx, "/repo")
		if !errors.Is(err, domain.ErrNoSnapshot) {
			t.Errorf("LatestSnapshot() error = %v, want ErrNoSnapshot", err)
		}
	})

	t.Run("replace and load", func(t *testing.T) {
		st, _ := domain.NewFileState("a.txt", domain.StatusModified)
		if err := repo.ReplaceSnapshot(ctx, domain.NewSnapshot("/repo", []*domain.FileState{st})); err != nil {
			t.Fatalf("ReplaceSnapshot() error = %v", err)
		}

		snap, err := repo.LatestSnapshot(ctx, "/repo")
		if err != nil {
			t.Fatalf("LatestSnapshot() error = %v", err)
		}
		found, ok := snap.Get("a.txt")
		if !ok {
			t.Fatal("LatestSnapshot() lost a.txt")
		}
		if found.WorkingCopy != domain.StatusModified {
			t.Errorf("WorkingCopy = %v, want %v", found.WorkingCopy, domain.StatusModified)
		}
	})

	t.Run("other root", func(t *testing.T) {
		_, err := repo.LatestSnapshot(ctx, "/other")
		if !errors.Is(err, domain.ErrNoSnapshot) {
			t.Errorf("LatestSnapshot() error = %v, want ErrNoSnapshot", err)
		}
	})
}
