// Package ports defines the interfaces (driven and driving ports)
// for gitstate following hexagonal architecture principles.
// These interfaces define the contracts between the domain layer and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/gitstate/internal/domain"
)

// StateRepository defines the interface for file-state persistence.
// This is a driven port (implemented by adapters).
type StateRepository interface {
	// ReplaceSnapshot stores snap as the latest snapshot of its repository,
	// discarding whatever was stored before for that root.
	ReplaceSnapshot(ctx context.Context, snap *domain.Snapshot) error

	// LatestSnapshot returns the last stored snapshot for root.
	// It returns domain.ErrNoSnapshot when none exists.
	LatestSnapshot(ctx context.Context, root string) (*domain.Snapshot, error)
}

// Storage is the combined repository interface.
// This is a driven port (implemented by adapters).
type Storage interface {
	// States provides access to file-state operations.
	States() StateRepository

	// Close closes the storage connection.
	Close() error

	// Migrate runs database migrations.
	Migrate() error
}
