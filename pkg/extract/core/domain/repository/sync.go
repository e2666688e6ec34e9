package repository

import (
	"context"
	"errors"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// ErrSyncNotFound is returned when a Sync is not found or has been discarded.
var ErrSyncNotFound = errors.New("sync not found")

// Sync defines persistence operations for Sync aggregates.
type Sync interface {
	// SaveSync persists a new Sync.
	SaveSync(ctx context.Context, sync *model.Sync) error

	// UpdateSync updates an existing Sync.
	UpdateSync(ctx context.Context, sync *model.Sync) error

	// FindSyncByID finds a Sync by ID. Discarded Syncs are treated as not found.
	FindSyncByID(ctx context.Context, id string) (*model.Sync, error)

	// UpdateSyncCursor persists a forward cursor advance on the Sync.
	UpdateSyncCursor(ctx context.Context, syncID, cursor string) error

	// SoftDeleteSync stamps DiscardedAt on the Sync. Detaching the historical
	// SyncRecords is an explicit application-level step, not a side effect of
	// this call.
	SoftDeleteSync(ctx context.Context, syncID string) error
}
