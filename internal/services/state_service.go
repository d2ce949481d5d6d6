package services

import (
	"context"

	"github.com/xvierd/gitstate/internal/domain"
	"github.com/xvierd/gitstate/internal/ports"
)

// DefaultHistoryLimit is used when a history query gives no positive limit.
const DefaultHistoryLimit = 20

// StateService implements the StateProvider interface.
type StateService struct {
	status *StatusService
}

// NewStateService creates a new state service.
func NewStateService(status *StatusService) *StateService {
	return &StateService{status: status}
}

// GetFileState implements ports.StateProvider.
func (s *StateService) GetFileState(ctx context.Context, path string) (*domain.FileState, error) {
	return s.status.State(ctx, path)
}

// ListFileStates implements ports.StateProvider.
func (s *StateService) ListFileStates(ctx context.Context, filter ports.StateFilter) ([]*domain.FileState, error) {
	return s.status.States(ctx, filter)
}

// Refresh implements ports.StateProvider. Paths already known stay reported
// while git still knows them.
func (s *StateService) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	return s.status.Refresh(ctx, RefreshRequest{Carry: s.status.Snapshot().Paths()})
}

// GetFileHistory implements ports.StateProvider.
func (s *StateService) GetFileHistory(ctx context.Context, path string, limit int) ([]domain.Revision, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.status.History(ctx, path, limit)
}

// GetMergeInfo implements ports.StateProvider.
func (s *StateService) GetMergeInfo(ctx context.Context, path string) (*ports.MergeInfo, error) {
	return s.status.MergeInfo(ctx, path)
}

// GetCheckInCandidates implements ports.StateProvider.
func (s *StateService) GetCheckInCandidates(ctx context.Context) ([]*domain.FileState, error) {
	return s.status.CheckInCandidates(ctx)
}

// Ensure StateService implements StateProvider.
var _ ports.StateProvider = (*StateService)(nil)
