// Package extractor implements the extraction engine: it drives a source
// read stream in batches, detects changed rows by content fingerprint, and
// stages them for delivery inside per-batch transactions.
package extractor

import (
	"context"
	"errors"
	"fmt"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	repo "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/repository"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/metrics"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/tx"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/engine/batcher"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

const moduleName = "extractor"

// variant supplies the strategy-specific pieces of an extraction: how batch
// parameters are built and whether the run advances the Sync cursor.
type variant interface {
	name() string
	buildParams(sync *model.Sync, run *model.SyncRun, engine config.EngineConfig) batcher.Params
	advancesCursor(sync *model.Sync) bool
}

// Core carries the shared collaborators of every extraction variant.
type Core struct {
	repo     repo.SyncRepository
	txm      tx.Manager
	clients  port.SourceClientResolver
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
	engine   config.EngineConfig
}

// NewCore creates the shared extraction core.
func NewCore(
	repository repo.SyncRepository,
	txm tx.Manager,
	clients port.SourceClientResolver,
	recorder metrics.MetricRecorder,
	tracer metrics.Tracer,
	cfg *config.Config,
) *Core {
	return &Core{
		repo:     repository,
		txm:      txm,
		clients:  clients,
		recorder: recorder,
		tracer:   tracer,
		engine:   cfg.Extract.Engine,
	}
}

// load fetches the run and its Sync. proceed is false when the run is not in
// started status; the dispatch is then a no-op with no side effects.
func (c *Core) load(ctx context.Context, syncRunID string) (*model.Sync, *model.SyncRun, bool, error) {
	run, err := c.repo.FindSyncRunByID(ctx, syncRunID)
	if err != nil {
		return nil, nil, false, exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync run '%s'", syncRunID), err, false, false)
	}
	if run.Status != model.RunStatusStarted {
		logger.Infof("SyncRun %s is in status '%s', skipping extraction", run.ID, run.Status)
		return nil, run, false, nil
	}
	sync, err := c.repo.FindSyncByID(ctx, run.SyncID)
	if err != nil {
		return nil, nil, false, exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync '%s' for run '%s'", run.SyncID, run.ID), err, false, false)
	}
	return sync, run, true, nil
}

// execute runs the extraction loop for one started run.
func (c *Core) execute(ctx context.Context, sync *model.Sync, run *model.SyncRun, handle port.ActivityHandle, v variant) (err error) {
	ctx, endRun := c.tracer.StartRunSpan(ctx, sync.ID, run.ID)
	defer func() { endRun(err) }()

	c.recorder.RecordRunStart(ctx, run)
	logger.Infof("Extraction started: sync=%s run=%s variant=%s offset=%d", sync.ID, run.ID, v.name(), run.CurrentOffset)

	if err = c.transition(ctx, run, run.MarkAsQuerying); err != nil {
		return err
	}

	client, err := c.clients.ClientFor(ctx, sync)
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to resolve source client for sync '%s'", sync.ID), err, false, true)
	}

	params := v.buildParams(sync, run, c.engine)
	params.Client = client
	strategy, err := batcher.New(params)
	if err != nil {
		return exception.NewExtractError(moduleName, "failed to build batch strategy", err, false, false)
	}

	highestCursor := ""
	for {
		if handle.CancelRequested() {
			return c.cancel(run)
		}

		group, nextErr := strategy.Next(ctx)
		if errors.Is(nextErr, batcher.ErrNoMoreBatches) {
			break
		}
		if nextErr != nil {
			err = exception.NewExtractError(moduleName, "source read failed", nextErr, false, true)
			return err
		}

		if err = c.processGroup(ctx, sync, run, group, strategy.CurrentOffset()); err != nil {
			return err
		}

		if group.CursorValue != "" && (highestCursor == "" || model.CompareCursor(group.CursorValue, highestCursor) > 0) {
			highestCursor = group.CursorValue
		}
		c.heartbeat(ctx, handle, run, group)
	}

	return c.finishQuerying(ctx, sync, run, strategy.CurrentOffset(), highestCursor, v)
}

// transition applies a state change and persists it.
func (c *Core) transition(ctx context.Context, run *model.SyncRun, mark func() error) error {
	if err := mark(); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("invalid state transition for run '%s'", run.ID), err, false, false)
	}
	if err := c.repo.UpdateSyncRun(ctx, run); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to persist run '%s'", run.ID), err, false, true)
	}
	return nil
}

// processGroup stages one group of records in a single transaction: record
// upserts, counter deltas and the offset checkpoint commit together.
func (c *Core) processGroup(ctx context.Context, sync *model.Sync, run *model.SyncRun, group *batcher.Group, offset int64) error {
	bctx, endBatch := c.tracer.StartBatchSpan(ctx, run.ID, group.Number)
	var batchErr error
	defer func() { endBatch(batchErr) }()

	txn, txCtx, err := c.txm.Begin(bctx)
	if err != nil {
		batchErr = exception.NewExtractError(moduleName, "failed to begin batch transaction", err, false, true)
		return batchErr
	}

	deltas, err := c.stageRecords(txCtx, sync, run, group)
	if err != nil {
		_ = txn.Rollback()
		batchErr = err
		return batchErr
	}

	run.CurrentOffset = offset
	if err := c.repo.ApplyRunCounters(txCtx, run, deltas); err != nil {
		_ = txn.Rollback()
		batchErr = exception.NewExtractError(moduleName, fmt.Sprintf("failed to apply counters for run '%s'", run.ID), err, false, true)
		return batchErr
	}

	if err := txn.Commit(); err != nil {
		batchErr = exception.NewExtractError(moduleName, "failed to commit batch transaction", err, false, true)
		return batchErr
	}

	c.recorder.RecordBatch(ctx, run, len(group.Records), int(deltas.SkippedRows))
	logger.Debugf("Batch %d committed: run=%s rows=%d skipped=%d offset=%d",
		group.Number, run.ID, len(group.Records), deltas.SkippedRows, offset)
	return nil
}

// stageRecords walks one group and upserts every new or changed record.
// Rows whose fingerprint matches the stored one are untouched and stay
// attached to the run that last changed them.
func (c *Core) stageRecords(txCtx context.Context, sync *model.Sync, run *model.SyncRun, group *batcher.Group) (repo.RunCounters, error) {
	deltas := repo.RunCounters{}
	seen := make(map[string]struct{}, len(group.Records))

	for _, rec := range group.Records {
		deltas.TotalQueryRows++

		pk := model.CursorValueString(rec.Data[sync.Model.PrimaryKey])
		if pk == "" {
			logger.Warnf("Row without primary key '%s' skipped: sync=%s run=%s", sync.Model.PrimaryKey, sync.ID, run.ID)
			continue
		}
		if _, dup := seen[pk]; dup {
			deltas.SkippedRows++
			continue
		}
		seen[pk] = struct{}{}

		fingerprint, err := model.Fingerprint(rec.Data)
		if err != nil {
			return deltas, exception.NewExtractError(moduleName, fmt.Sprintf("failed to fingerprint row '%s'", pk), err, true, false)
		}

		record, err := c.repo.FindSyncRecord(txCtx, sync.ID, pk)
		if errors.Is(err, repo.ErrSyncRecordNotFound) {
			record = model.NewSyncRecord(sync.ID, pk)
		} else if err != nil {
			return deltas, exception.NewExtractError(moduleName, fmt.Sprintf("failed to load record '%s'", pk), err, false, true)
		}

		if !record.New() && record.Fingerprint == fingerprint {
			continue
		}

		record.ApplyObservation(rec.Data, fingerprint, run.ID)
		if err := c.repo.UpsertSyncRecord(txCtx, record); err != nil {
			return deltas, exception.NewExtractError(moduleName, fmt.Sprintf("failed to upsert record '%s'", pk), err, false, true)
		}
	}
	return deltas, nil
}

// finishQuerying moves an exhausted run to queued, stamping the staged row
// count and, when the variant allows it, the advanced Sync cursor.
func (c *Core) finishQuerying(ctx context.Context, sync *model.Sync, run *model.SyncRun, offset int64, highestCursor string, v variant) error {
	total, err := c.repo.CountSyncRecordsByRun(ctx, run.ID)
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to count staged records for run '%s'", run.ID), err, false, true)
	}
	run.TotalRows = total
	run.CurrentOffset = offset

	if err := c.transition(ctx, run, run.MarkAsQueued); err != nil {
		return err
	}

	if v.advancesCursor(sync) && highestCursor != "" {
		sync.AdvanceCursor(highestCursor)
		if err := c.repo.UpdateSyncCursor(ctx, sync.ID, sync.CurrentCursor); err != nil {
			return exception.NewExtractError(moduleName, fmt.Sprintf("failed to advance cursor for sync '%s'", sync.ID), err, false, true)
		}
	}

	c.recorder.RecordRunFinish(ctx, run)
	logger.Infof("Extraction queued: sync=%s run=%s total_rows=%d skipped=%d cursor=%s",
		sync.ID, run.ID, run.TotalRows, run.SkippedRows, sync.CurrentCursor)
	return nil
}

// cancel honors a cooperative cancellation request. Progress committed so far
// stays durable; the terminal transition is left to the caller's finalizer so
// notifications and alerting fire alongside the persisted state change.
func (c *Core) cancel(run *model.SyncRun) error {
	logger.Warnf("Cancellation requested for run %s, stopping between batches", run.ID)
	return exception.ErrCancelRequested
}

// heartbeat reports liveness after every committed batch, with cursor and
// offset details when enabled.
func (c *Core) heartbeat(ctx context.Context, handle port.ActivityHandle, run *model.SyncRun, group *batcher.Group) {
	if !c.engine.HeartbeatDetails {
		handle.Heartbeat(ctx)
		return
	}
	detail := fmt.Sprintf("batch=%d offset=%d", group.Number, run.CurrentOffset)
	if group.CursorValue != "" {
		detail += " cursor=" + group.CursorValue
	}
	handle.Heartbeat(ctx, detail)
}
