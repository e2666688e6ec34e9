package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	repo "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/repository"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// SyncDeleter soft-deletes a Sync and detaches its historical records. The
// records themselves are preserved as an audit trail; only their run
// pointers are cleared.
type SyncDeleter struct {
	repo repo.SyncRepository
}

// NewSyncDeleter creates a SyncDeleter.
func NewSyncDeleter(repository repo.SyncRepository) *SyncDeleter {
	return &SyncDeleter{repo: repository}
}

// Delete discards the Sync and detaches its SyncRecords. The detach step is
// an explicit application-level cascade, never a database-side delete.
func (d *SyncDeleter) Delete(ctx context.Context, syncID string) error {
	var merr *multierror.Error

	if err := d.repo.SoftDeleteSync(ctx, syncID); err != nil {
		if errors.Is(err, repo.ErrSyncNotFound) {
			return exception.NewExtractError(moduleName, fmt.Sprintf("cannot delete sync '%s'", syncID), err, false, false)
		}
		merr = multierror.Append(merr, fmt.Errorf("failed to discard sync '%s': %w", syncID, err))
	}

	detached, err := d.repo.DetachSyncRecordsBySync(ctx, syncID)
	if err != nil {
		merr = multierror.Append(merr, fmt.Errorf("failed to detach records for sync '%s': %w", syncID, err))
	}

	logger.Infof("Sync %s discarded, %d records detached", syncID, detached)
	return merr.ErrorOrNil()
}
