package repository

import (
	"context"
	"errors"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// ErrSyncRecordNotFound is returned when no SyncRecord exists for a
// (sync_id, primary_key) pair.
var ErrSyncRecordNotFound = errors.New("sync record not found")

// SyncRecord defines persistence operations for SyncRecords. Implementations
// must enforce a uniqueness constraint on (sync_id, primary_key); it is the
// sole concurrency-safety mechanism preventing duplicate records under
// concurrent or retried runs.
type SyncRecord interface {
	// FindSyncRecord finds the record for a (syncID, primaryKeyValue) pair.
	FindSyncRecord(ctx context.Context, syncID, primaryKeyValue string) (*model.SyncRecord, error)

	// UpsertSyncRecord inserts the record or, on a (sync_id, primary_key)
	// conflict, replaces its payload, fingerprint, action, status and run
	// pointer.
	UpsertSyncRecord(ctx context.Context, record *model.SyncRecord) error

	// CountSyncRecordsByRun counts the records currently attached to a run.
	CountSyncRecordsByRun(ctx context.Context, syncRunID string) (int64, error)

	// DetachSyncRecordsBySync nulls the run pointer on every record of the
	// given Sync, preserving the records themselves as an audit trail.
	// Returns the number of detached records.
	DetachSyncRecordsBySync(ctx context.Context, syncID string) (int64, error)
}
