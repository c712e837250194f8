package ports

import (
	"context"

	"github.com/emipaz/gestortareas/internal/core/domain"
)

// PersistenceGateway defines the storage contract for the task service.
// SaveAll overwrites the whole stored state; the service calls it after
// every successful mutation, so implementations must leave the previous
// snapshot intact when a write fails.
type PersistenceGateway interface {
	// LoadAll returns the complete stored state. A missing or empty store
	// yields empty slices, not an error.
	LoadAll(ctx context.Context) (users []*domain.User, tasks []*domain.Task, err error)
	SaveAll(ctx context.Context, users []*domain.User, tasks []*domain.Task) error
	// AppendArchive adds one record to the finished-task archive. Records
	// are never updated or removed.
	AppendArchive(ctx context.Context, entry domain.ArchiveEntry) error
	// ReadArchive returns all archive records in append order.
	ReadArchive(ctx context.Context) ([]domain.ArchiveEntry, error)
}
