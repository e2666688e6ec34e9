// Package usecase implements the application services around the engine:
// run finalization, delivery bookkeeping and Sync deletion.
package usecase

import (
	"context"
	"errors"
	"fmt"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	repo "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/repository"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/metrics"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

const moduleName = "usecase"

// RunFinalizer owns the terminal transitions of a run and the hooks fired on
// them. Hooks run exactly once, after the terminal state is durably
// persisted; re-finalizing an already terminal run is a no-op.
type RunFinalizer struct {
	repo     repo.SyncRepository
	notifier port.Notifier
	alerts   port.AlertQueue
	usage    port.UsageRecorder
	recorder metrics.MetricRecorder
}

// NewRunFinalizer creates a RunFinalizer.
func NewRunFinalizer(
	repository repo.SyncRepository,
	notifier port.Notifier,
	alerts port.AlertQueue,
	usage port.UsageRecorder,
	recorder metrics.MetricRecorder,
) *RunFinalizer {
	return &RunFinalizer{
		repo:     repository,
		notifier: notifier,
		alerts:   alerts,
		usage:    usage,
		recorder: recorder,
	}
}

// BeginDelivery moves a queued run to in_progress when the delivery side
// picks it up.
func (f *RunFinalizer) BeginDelivery(ctx context.Context, syncRunID string) error {
	run, err := f.repo.FindSyncRunByID(ctx, syncRunID)
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync run '%s'", syncRunID), err, false, false)
	}
	if err := run.MarkAsInProgress(); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("invalid state transition for run '%s'", run.ID), err, false, false)
	}
	return f.persist(ctx, run)
}

// RecordDeliveryOutcome applies per-batch delivery results to the run.
// Usage is metered on the successful-row delta only, and only when it is
// positive.
func (f *RunFinalizer) RecordDeliveryOutcome(ctx context.Context, syncRunID string, successful, failed int64) error {
	run, err := f.repo.FindSyncRunByID(ctx, syncRunID)
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync run '%s'", syncRunID), err, false, false)
	}
	deltas := repo.RunCounters{SuccessfulRows: successful, FailedRows: failed}
	if err := f.repo.ApplyRunCounters(ctx, run, deltas); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to apply delivery counters for run '%s'", run.ID), err, false, true)
	}
	if successful > 0 {
		f.usage.RecordSuccessfulRows(ctx, run.WorkspaceID, successful)
	}
	return nil
}

// UpdateSuccess moves an in_progress run to success and returns the parent
// Sync to healthy. Calling it again for an already successful run is a no-op.
func (f *RunFinalizer) UpdateSuccess(ctx context.Context, syncRunID string) error {
	run, err := f.repo.FindSyncRunByID(ctx, syncRunID)
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync run '%s'", syncRunID), err, false, false)
	}
	if run.TerminalStatus() {
		return nil
	}
	if err := run.MarkAsSuccess(); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("invalid state transition for run '%s'", run.ID), err, false, false)
	}
	if err := f.persist(ctx, run); err != nil {
		return err
	}
	f.finishSync(ctx, run, model.SyncStatusHealthy)
	f.fireHooks(ctx, run)
	return nil
}

// UpdateFailure moves a run to failed with the given cause and marks the
// parent Sync failed. It is idempotent: an already terminal run is left
// untouched and no hooks fire again.
func (f *RunFinalizer) UpdateFailure(ctx context.Context, syncRunID string, cause error) error {
	run, err := f.repo.FindSyncRunByID(ctx, syncRunID)
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync run '%s'", syncRunID), err, false, false)
	}
	return f.fail(ctx, run, cause)
}

// FinalizeAfterWorkflow is the backstop invoked when the workflow completes:
// a run left in any non-terminal state is forced to failed so no run ever
// dangles.
func (f *RunFinalizer) FinalizeAfterWorkflow(ctx context.Context, syncRunID string) error {
	run, err := f.repo.FindSyncRunByID(ctx, syncRunID)
	if err != nil {
		if errors.Is(err, repo.ErrSyncRunNotFound) {
			return nil
		}
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync run '%s'", syncRunID), err, false, false)
	}
	if run.TerminalStatus() {
		return nil
	}
	logger.Warnf("Run %s left non-terminal (%s) after workflow completion, forcing failed", run.ID, run.Status)
	return f.fail(ctx, run, fmt.Errorf("workflow completed with run in non-terminal status '%s'", run.Status))
}

// Pause suspends a non-terminal run; Resume returns a paused run to started
// so the engine can be re-dispatched.
func (f *RunFinalizer) Pause(ctx context.Context, syncRunID string) error {
	return f.applyTransition(ctx, syncRunID, (*model.SyncRun).MarkAsPaused)
}

func (f *RunFinalizer) Resume(ctx context.Context, syncRunID string) error {
	return f.applyTransition(ctx, syncRunID, (*model.SyncRun).MarkAsStarted)
}

func (f *RunFinalizer) applyTransition(ctx context.Context, syncRunID string, mark func(*model.SyncRun) error) error {
	run, err := f.repo.FindSyncRunByID(ctx, syncRunID)
	if err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to load sync run '%s'", syncRunID), err, false, false)
	}
	if err := mark(run); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("invalid state transition for run '%s'", run.ID), err, false, false)
	}
	return f.persist(ctx, run)
}

func (f *RunFinalizer) fail(ctx context.Context, run *model.SyncRun, cause error) error {
	if run.TerminalStatus() {
		return nil
	}
	if err := run.MarkAsFailed(cause); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("invalid state transition for run '%s'", run.ID), err, false, false)
	}
	if err := f.persist(ctx, run); err != nil {
		return err
	}
	f.finishSync(ctx, run, model.SyncStatusFailed)
	f.fireHooks(ctx, run)
	return nil
}

func (f *RunFinalizer) persist(ctx context.Context, run *model.SyncRun) error {
	if err := f.repo.UpdateSyncRun(ctx, run); err != nil {
		return exception.NewExtractError(moduleName, fmt.Sprintf("failed to persist run '%s'", run.ID), err, false, true)
	}
	return nil
}

// finishSync updates the parent Sync's health. A discarded Sync is left
// alone; the run outcome still fires its hooks.
func (f *RunFinalizer) finishSync(ctx context.Context, run *model.SyncRun, status model.SyncStatus) {
	sync, err := f.repo.FindSyncByID(ctx, run.SyncID)
	if err != nil {
		logger.Warnf("Sync %s not found while finalizing run %s: %v", run.SyncID, run.ID, err)
		return
	}
	sync.Status = status
	if err := f.repo.UpdateSync(ctx, sync); err != nil {
		logger.Errorf("Failed to update sync %s status to %s: %v", sync.ID, status, err)
	}
}

// fireHooks runs the terminal hooks once, after the durable commit of the
// terminal transition.
func (f *RunFinalizer) fireHooks(ctx context.Context, run *model.SyncRun) {
	f.recorder.RecordRunFinish(ctx, run)
	if sync, err := f.repo.FindSyncByID(ctx, run.SyncID); err == nil {
		f.notifier.NotifyRunFinished(ctx, sync, run)
	}
	f.alerts.EnqueueRunAlert(ctx, run)
}
