package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/metrics"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/infrastructure/repository/inmemory"
)

type fakeNotifier struct {
	calls int
}

func (n *fakeNotifier) NotifyRunFinished(context.Context, *model.Sync, *model.SyncRun) {
	n.calls++
}

type fakeAlerts struct {
	runs []*model.SyncRun
}

func (a *fakeAlerts) EnqueueRunAlert(_ context.Context, run *model.SyncRun) {
	a.runs = append(a.runs, run)
}

type fakeUsage struct {
	total int64
	calls int
}

func (u *fakeUsage) RecordSuccessfulRows(_ context.Context, _ string, delta int64) {
	u.total += delta
	u.calls++
}

type finalizerEnv struct {
	repo     *inmemory.Repository
	notifier *fakeNotifier
	alerts   *fakeAlerts
	usage    *fakeUsage
	f        *RunFinalizer
	sync     *model.Sync
}

func newFinalizerEnv(t *testing.T) *finalizerEnv {
	t.Helper()
	env := &finalizerEnv{
		repo:     inmemory.NewRepository(),
		notifier: &fakeNotifier{},
		alerts:   &fakeAlerts{},
		usage:    &fakeUsage{},
	}
	env.f = NewRunFinalizer(env.repo, env.notifier, env.alerts, env.usage, metrics.NewNoopMetricRecorder())

	env.sync = model.NewSync("ws-1", "src-1", "dst-1",
		model.ModelConfig{Name: "users", Query: "SELECT * FROM users", PrimaryKey: "id"},
		model.SourceConfig{}, model.SyncModeFullRefresh)
	require.NoError(t, env.repo.SaveSync(context.Background(), env.sync))
	return env
}

// runAt saves a run advanced to the given status.
func (e *finalizerEnv) runAt(t *testing.T, status model.RunStatus) *model.SyncRun {
	t.Helper()
	run := model.NewSyncRun(e.sync, model.RunTypeGeneral)
	path := []model.RunStatus{
		model.RunStatusStarted, model.RunStatusQuerying, model.RunStatusQueued, model.RunStatusInProgress,
	}
	for _, next := range path {
		if run.Status == status {
			break
		}
		require.NoError(t, run.TransitionTo(next))
	}
	require.Equal(t, status, run.Status)
	require.NoError(t, e.repo.SaveSyncRun(context.Background(), run))
	return run
}

func (e *finalizerEnv) reload(t *testing.T, id string) *model.SyncRun {
	t.Helper()
	run, err := e.repo.FindSyncRunByID(context.Background(), id)
	require.NoError(t, err)
	return run
}

func TestUpdateSuccess(t *testing.T) {
	env := newFinalizerEnv(t)
	run := env.runAt(t, model.RunStatusInProgress)

	require.NoError(t, env.f.UpdateSuccess(context.Background(), run.ID))

	got := env.reload(t, run.ID)
	assert.Equal(t, model.RunStatusSuccess, got.Status)
	assert.NotNil(t, got.FinishedAt)

	sync, err := env.repo.FindSyncByID(context.Background(), env.sync.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusHealthy, sync.Status)

	assert.Equal(t, 1, env.notifier.calls)
	assert.Len(t, env.alerts.runs, 1)

	// Finalizing again is a no-op; hooks do not fire twice.
	require.NoError(t, env.f.UpdateSuccess(context.Background(), run.ID))
	assert.Equal(t, 1, env.notifier.calls)
	assert.Len(t, env.alerts.runs, 1)
}

func TestUpdateSuccess_InvalidFromQuerying(t *testing.T) {
	env := newFinalizerEnv(t)
	run := env.runAt(t, model.RunStatusQuerying)

	err := env.f.UpdateSuccess(context.Background(), run.ID)
	require.Error(t, err)

	// The failed transition leaves the run untouched.
	got := env.reload(t, run.ID)
	assert.Equal(t, model.RunStatusQuerying, got.Status)
}

func TestUpdateFailure(t *testing.T) {
	env := newFinalizerEnv(t)
	run := env.runAt(t, model.RunStatusQuerying)

	cause := errors.New("destination rejected batch")
	require.NoError(t, env.f.UpdateFailure(context.Background(), run.ID, cause))

	got := env.reload(t, run.ID)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.NotNil(t, got.FinishedAt)
	require.NotEmpty(t, got.Failures)
	assert.Contains(t, got.Failures[0], "destination rejected batch")

	sync, err := env.repo.FindSyncByID(context.Background(), env.sync.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusFailed, sync.Status)

	// Idempotent: a second failure report changes nothing.
	require.NoError(t, env.f.UpdateFailure(context.Background(), run.ID, errors.New("later error")))
	got = env.reload(t, run.ID)
	assert.Len(t, got.Failures, 1)
	assert.Equal(t, 1, env.notifier.calls)
}

func TestFinalizeAfterWorkflow(t *testing.T) {
	env := newFinalizerEnv(t)

	dangling := env.runAt(t, model.RunStatusQueued)
	require.NoError(t, env.f.FinalizeAfterWorkflow(context.Background(), dangling.ID))
	assert.Equal(t, model.RunStatusFailed, env.reload(t, dangling.ID).Status)

	// Terminal runs are left untouched.
	done := env.runAt(t, model.RunStatusInProgress)
	require.NoError(t, env.f.UpdateSuccess(context.Background(), done.ID))
	require.NoError(t, env.f.FinalizeAfterWorkflow(context.Background(), done.ID))
	assert.Equal(t, model.RunStatusSuccess, env.reload(t, done.ID).Status)

	// A missing run is not an error for the backstop.
	assert.NoError(t, env.f.FinalizeAfterWorkflow(context.Background(), "missing"))
}

func TestRecordDeliveryOutcome(t *testing.T) {
	env := newFinalizerEnv(t)
	run := env.runAt(t, model.RunStatusInProgress)

	require.NoError(t, env.f.RecordDeliveryOutcome(context.Background(), run.ID, 40, 2))
	require.NoError(t, env.f.RecordDeliveryOutcome(context.Background(), run.ID, 0, 3))

	got := env.reload(t, run.ID)
	assert.Equal(t, int64(40), got.SuccessfulRows)
	assert.Equal(t, int64(5), got.FailedRows)

	// Usage is metered only on positive successful deltas.
	assert.Equal(t, int64(40), env.usage.total)
	assert.Equal(t, 1, env.usage.calls)
}

func TestBeginDelivery(t *testing.T) {
	env := newFinalizerEnv(t)
	run := env.runAt(t, model.RunStatusQueued)

	require.NoError(t, env.f.BeginDelivery(context.Background(), run.ID))
	assert.Equal(t, model.RunStatusInProgress, env.reload(t, run.ID).Status)
}

func TestPauseAndResume(t *testing.T) {
	env := newFinalizerEnv(t)
	run := env.runAt(t, model.RunStatusQuerying)

	require.NoError(t, env.f.Pause(context.Background(), run.ID))
	assert.Equal(t, model.RunStatusPaused, env.reload(t, run.ID).Status)

	// Pausing a paused run is invalid.
	assert.Error(t, env.f.Pause(context.Background(), run.ID))

	require.NoError(t, env.f.Resume(context.Background(), run.ID))
	assert.Equal(t, model.RunStatusStarted, env.reload(t, run.ID).Status)
}
