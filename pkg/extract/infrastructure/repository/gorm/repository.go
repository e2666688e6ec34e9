// Package gorm implements the metadata repository on GORM. Operations pick
// up an active transaction from the context when the engine opened one.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	repo "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/repository"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
)

const moduleName = "repository"

// SyncRepository implements repository.SyncRepository on a GORM connection.
type SyncRepository struct {
	conn *gormadaptor.Connection
}

// NewSyncRepository creates a GORM-backed SyncRepository.
func NewSyncRepository(conn *gormadaptor.Connection) repo.SyncRepository {
	return &SyncRepository{conn: conn}
}

// db returns the transactional handle from the context when present,
// otherwise the shared connection.
func (r *SyncRepository) db(ctx context.Context) *gorm.DB {
	if txDB, ok := gormadaptor.TxFrom(ctx); ok {
		return txDB
	}
	return r.conn.Gorm().WithContext(ctx)
}

// --- Sync ---

func (r *SyncRepository) SaveSync(ctx context.Context, sync *model.Sync) error {
	if err := r.db(ctx).Create(fromDomainSync(sync)).Error; err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to save sync '%s'", sync.ID), err, false, true)
	}
	return nil
}

func (r *SyncRepository) UpdateSync(ctx context.Context, sync *model.Sync) error {
	result := r.db(ctx).Model(&SyncEntity{}).Where("id = ?", sync.ID).Select("*").Updates(fromDomainSync(sync))
	if result.Error != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to update sync '%s'", sync.ID), result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		return repo.ErrSyncNotFound
	}
	return nil
}

func (r *SyncRepository) FindSyncByID(ctx context.Context, id string) (*model.Sync, error) {
	var entity SyncEntity
	err := r.db(ctx).Where("id = ? AND discarded_at IS NULL", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrSyncNotFound
	}
	if err != nil {
		return nil, exception.NewExtractError(moduleName, fmt.Sprintf("failed to find sync '%s'", id), err, false, true)
	}
	return toDomainSync(&entity), nil
}

func (r *SyncRepository) UpdateSyncCursor(ctx context.Context, syncID, cursor string) error {
	result := r.db(ctx).Model(&SyncEntity{}).Where("id = ?", syncID).Updates(map[string]interface{}{
		"current_cursor": cursor,
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to update cursor for sync '%s'", syncID), result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		return repo.ErrSyncNotFound
	}
	return nil
}

func (r *SyncRepository) SoftDeleteSync(ctx context.Context, syncID string) error {
	now := time.Now()
	result := r.db(ctx).Model(&SyncEntity{}).
		Where("id = ? AND discarded_at IS NULL", syncID).
		Updates(map[string]interface{}{"discarded_at": now, "updated_at": now})
	if result.Error != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to discard sync '%s'", syncID), result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		// Either missing or already discarded; discarding twice is a no-op.
		var count int64
		if err := r.db(ctx).Model(&SyncEntity{}).Where("id = ?", syncID).Count(&count).Error; err != nil {
			return exception.NewExtractError(moduleName, fmt.Sprintf("failed to check sync '%s'", syncID), err, false, true)
		}
		if count == 0 {
			return repo.ErrSyncNotFound
		}
	}
	return nil
}

// --- SyncRun ---

func (r *SyncRepository) SaveSyncRun(ctx context.Context, run *model.SyncRun) error {
	if err := r.db(ctx).Create(fromDomainSyncRun(run)).Error; err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to save sync run '%s'", run.ID), err, false, true)
	}
	return nil
}

func (r *SyncRepository) UpdateSyncRun(ctx context.Context, run *model.SyncRun) error {
	originalVersion := run.Version
	run.Version++
	run.LastUpdated = time.Now()
	entity := fromDomainSyncRun(run)

	result := r.db(ctx).Model(&SyncRunEntity{}).
		Where("id = ? AND version = ?", run.ID, originalVersion).
		Select("*").Updates(entity)
	if result.Error != nil {
		run.Version = originalVersion
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to update sync run '%s'", run.ID), result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		run.Version = originalVersion
		return exception.NewExtractErrorf(moduleName, "optimistic lock conflict on sync run '%s' (version %d)", run.ID, originalVersion)
	}
	return nil
}

func (r *SyncRepository) FindSyncRunByID(ctx context.Context, id string) (*model.SyncRun, error) {
	var entity SyncRunEntity
	err := r.db(ctx).Where("id = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrSyncRunNotFound
	}
	if err != nil {
		return nil, exception.NewExtractError(moduleName, fmt.Sprintf("failed to find sync run '%s'", id), err, false, true)
	}
	return toDomainSyncRun(&entity), nil
}

func (r *SyncRepository) ApplyRunCounters(ctx context.Context, run *model.SyncRun, deltas repo.RunCounters) error {
	result := r.db(ctx).Model(&SyncRunEntity{}).Where("id = ?", run.ID).Updates(map[string]interface{}{
		"total_query_rows": gorm.Expr("total_query_rows + ?", deltas.TotalQueryRows),
		"total_rows":       gorm.Expr("total_rows + ?", deltas.TotalRows),
		"successful_rows":  gorm.Expr("successful_rows + ?", deltas.SuccessfulRows),
		"failed_rows":      gorm.Expr("failed_rows + ?", deltas.FailedRows),
		"skipped_rows":     gorm.Expr("skipped_rows + ?", deltas.SkippedRows),
		"current_offset":   run.CurrentOffset,
		"last_updated":     time.Now(),
	})
	if result.Error != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to apply counters for sync run '%s'", run.ID), result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		return repo.ErrSyncRunNotFound
	}

	run.TotalQueryRows += deltas.TotalQueryRows
	run.TotalRows += deltas.TotalRows
	run.SuccessfulRows += deltas.SuccessfulRows
	run.FailedRows += deltas.FailedRows
	run.SkippedRows += deltas.SkippedRows
	return nil
}

func (r *SyncRepository) FindSyncRunsBySync(ctx context.Context, syncID string) ([]*model.SyncRun, error) {
	var entities []SyncRunEntity
	err := r.db(ctx).Where("sync_id = ?", syncID).Order("created_at DESC").Find(&entities).Error
	if err != nil {
		return nil, exception.NewExtractError(moduleName, fmt.Sprintf("failed to list runs for sync '%s'", syncID), err, false, true)
	}
	runs := make([]*model.SyncRun, len(entities))
	for i := range entities {
		runs[i] = toDomainSyncRun(&entities[i])
	}
	return runs, nil
}

// --- SyncRecord ---

func (r *SyncRepository) FindSyncRecord(ctx context.Context, syncID, primaryKeyValue string) (*model.SyncRecord, error) {
	var entity SyncRecordEntity
	err := r.db(ctx).Where("sync_id = ? AND primary_key_value = ?", syncID, primaryKeyValue).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrSyncRecordNotFound
	}
	if err != nil {
		return nil, exception.NewExtractError(moduleName, fmt.Sprintf("failed to find record '%s' for sync '%s'", primaryKeyValue, syncID), err, false, true)
	}
	return toDomainSyncRecord(&entity), nil
}

func (r *SyncRepository) UpsertSyncRecord(ctx context.Context, record *model.SyncRecord) error {
	entity := fromDomainSyncRecord(record)
	err := r.db(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sync_id"}, {Name: "primary_key_value"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sync_run_id", "record", "fingerprint", "action", "status", "error_logs", "updated_at",
		}),
	}).Create(entity).Error
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to upsert record '%s'", record.PrimaryKeyValue), err, false, true)
	}
	return nil
}

func (r *SyncRepository) CountSyncRecordsByRun(ctx context.Context, syncRunID string) (int64, error) {
	var count int64
	err := r.db(ctx).Model(&SyncRecordEntity{}).Where("sync_run_id = ?", syncRunID).Count(&count).Error
	if err != nil {
		return 0, exception.NewExtractError(moduleName, fmt.Sprintf("failed to count records for run '%s'", syncRunID), err, false, true)
	}
	return count, nil
}

func (r *SyncRepository) DetachSyncRecordsBySync(ctx context.Context, syncID string) (int64, error) {
	result := r.db(ctx).Model(&SyncRecordEntity{}).
		Where("sync_id = ? AND sync_run_id IS NOT NULL", syncID).
		Updates(map[string]interface{}{"sync_run_id": nil, "updated_at": time.Now()})
	if result.Error != nil {
		return 0, exception.NewExtractError(moduleName, fmt.Sprintf("failed to detach records for sync '%s'", syncID), result.Error, false, true)
	}
	return result.RowsAffected, nil
}

// Close implements repository.SyncRepository.
func (r *SyncRepository) Close() error {
	return r.conn.Close()
}

var _ repo.SyncRepository = (*SyncRepository)(nil)
