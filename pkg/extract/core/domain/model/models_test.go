package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSync(mode SyncMode) *Sync {
	s := NewSync("ws-1", "src-1", "dst-1",
		ModelConfig{Name: "users", Query: "SELECT * FROM users", PrimaryKey: "id"},
		SourceConfig{}, mode)
	s.CursorField = "updated_at"
	return s
}

func TestRunStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to RunStatus
		allowed  bool
	}{
		{RunStatusPending, RunStatusStarted, true},
		{RunStatusStarted, RunStatusQuerying, true},
		{RunStatusQuerying, RunStatusQueued, true},
		{RunStatusQueued, RunStatusInProgress, true},
		{RunStatusInProgress, RunStatusSuccess, true},
		{RunStatusPaused, RunStatusStarted, true},

		// Failure and cancellation are reachable from any non-terminal state.
		{RunStatusPending, RunStatusFailed, true},
		{RunStatusQuerying, RunStatusCanceled, true},
		{RunStatusPaused, RunStatusFailed, true},

		// The happy path cannot skip states.
		{RunStatusPending, RunStatusQuerying, false},
		{RunStatusStarted, RunStatusQueued, false},
		{RunStatusQuerying, RunStatusSuccess, false},
		{RunStatusQueued, RunStatusSuccess, false},

		// Terminal states have no successors.
		{RunStatusSuccess, RunStatusFailed, false},
		{RunStatusFailed, RunStatusStarted, false},
		{RunStatusCanceled, RunStatusFailed, false},

		// Pausing is allowed anywhere non-terminal, but not from paused.
		{RunStatusQueued, RunStatusPaused, true},
		{RunStatusPaused, RunStatusPaused, false},
		{RunStatusSuccess, RunStatusPaused, false},
	}

	for _, c := range cases {
		assert.Equalf(t, c.allowed, c.from.CanTransitionTo(c.to),
			"%s -> %s", c.from, c.to)
	}
}

func TestTransitionToRejectionLeavesStatusUnchanged(t *testing.T) {
	run := NewSyncRun(newTestSync(SyncModeFullRefresh), RunTypeGeneral)
	require.Equal(t, RunStatusPending, run.Status)

	err := run.TransitionTo(RunStatusQueued)
	require.Error(t, err)
	assert.Equal(t, RunStatusPending, run.Status)
}

func TestMarkAsFailedStampsFinishedAtAndFailure(t *testing.T) {
	run := NewSyncRun(newTestSync(SyncModeFullRefresh), RunTypeGeneral)
	require.NoError(t, run.MarkAsStarted())

	require.NoError(t, run.MarkAsFailed(errors.New("source exploded")))
	assert.Equal(t, RunStatusFailed, run.Status)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, FailureList{"source exploded"}, run.Failures)
}

func TestAddFailureDeduplicates(t *testing.T) {
	run := NewSyncRun(newTestSync(SyncModeFullRefresh), RunTypeGeneral)

	run.AddFailure(errors.New("timeout"))
	run.AddFailure(errors.New("timeout"))
	run.AddFailure(errors.New("connection refused"))
	run.AddFailure(nil)

	assert.Equal(t, FailureList{"timeout", "connection refused"}, run.Failures)
}

func TestRowFailurePercent(t *testing.T) {
	run := NewSyncRun(newTestSync(SyncModeFullRefresh), RunTypeGeneral)
	assert.Zero(t, run.RowFailurePercent())

	run.TotalRows = 200
	run.FailedRows = 30
	assert.InDelta(t, 15.0, run.RowFailurePercent(), 0.001)
}

func TestAdvanceCursor(t *testing.T) {
	s := newTestSync(SyncModeIncremental)

	s.AdvanceCursor("100")
	assert.Equal(t, "100", s.CurrentCursor)

	// The cursor never moves backwards.
	s.AdvanceCursor("50")
	assert.Equal(t, "100", s.CurrentCursor)

	// Numeric cursors compare numerically, not lexicographically.
	s.AdvanceCursor("99")
	assert.Equal(t, "100", s.CurrentCursor)
	s.AdvanceCursor("1000")
	assert.Equal(t, "1000", s.CurrentCursor)

	// Empty advances are ignored.
	s.AdvanceCursor("")
	assert.Equal(t, "1000", s.CurrentCursor)

	s.ClearCursor()
	assert.Empty(t, s.CurrentCursor)
}

func TestAdvanceCursorIgnoredInFullRefresh(t *testing.T) {
	s := newTestSync(SyncModeFullRefresh)
	s.AdvanceCursor("100")
	assert.Empty(t, s.CurrentCursor)
}

func TestIncremental(t *testing.T) {
	s := newTestSync(SyncModeIncremental)
	assert.True(t, s.Incremental())

	s.CursorField = ""
	assert.False(t, s.Incremental())

	assert.False(t, newTestSync(SyncModeFullRefresh).Incremental())
}

func TestCompareCursor(t *testing.T) {
	assert.Equal(t, -1, CompareCursor("2", "10"))
	assert.Equal(t, 1, CompareCursor("10", "2"))
	assert.Equal(t, 0, CompareCursor("3.5", "3.5"))
	// Non-numeric values compare lexicographically (ISO timestamps order
	// correctly).
	assert.Equal(t, -1, CompareCursor("2026-01-01T00:00:00Z", "2026-02-01T00:00:00Z"))
}
