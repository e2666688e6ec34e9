package repository

import (
	"context"
	"errors"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// ErrSyncRunNotFound is returned when a SyncRun is not found.
var ErrSyncRunNotFound = errors.New("sync run not found")

// RunCounters carries per-batch counter deltas for a SyncRun. All fields are
// increments; the repository applies them atomically together with the
// offset checkpoint.
type RunCounters struct {
	TotalQueryRows int64
	TotalRows      int64
	SuccessfulRows int64
	FailedRows     int64
	SkippedRows    int64
}

// SyncRun defines persistence operations for SyncRuns.
type SyncRun interface {
	// SaveSyncRun persists a new SyncRun.
	SaveSyncRun(ctx context.Context, run *model.SyncRun) error

	// UpdateSyncRun updates the state of an existing SyncRun using optimistic
	// locking on its Version.
	UpdateSyncRun(ctx context.Context, run *model.SyncRun) error

	// FindSyncRunByID finds a SyncRun by its ID.
	FindSyncRunByID(ctx context.Context, id string) (*model.SyncRun, error)

	// ApplyRunCounters applies counter deltas and the current offset
	// checkpoint to the run, read-modify-write safe against a concurrent
	// status write.
	ApplyRunCounters(ctx context.Context, run *model.SyncRun, deltas RunCounters) error

	// FindSyncRunsBySync lists all runs of a Sync, newest first.
	FindSyncRunsBySync(ctx context.Context, syncID string) ([]*model.SyncRun, error)
}
