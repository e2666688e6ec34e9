package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintIsOrderIndependent(t *testing.T) {
	a := RecordData{"id": 1, "name": "alpha", "nested": map[string]interface{}{"x": 1, "y": 2}}
	b := RecordData{"nested": map[string]interface{}{"y": 2, "x": 1}, "name": "alpha", "id": 1}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	base := RecordData{"id": 1, "name": "alpha"}
	changed := RecordData{"id": 1, "name": "beta"}

	fBase, err := Fingerprint(base)
	require.NoError(t, err)
	fChanged, err := Fingerprint(changed)
	require.NoError(t, err)
	assert.NotEqual(t, fBase, fChanged)

	// Stable across repeated computation.
	again, err := Fingerprint(base)
	require.NoError(t, err)
	assert.Equal(t, fBase, again)
}

func TestApplyObservation(t *testing.T) {
	rec := NewSyncRecord("sync-1", "pk-001")
	require.True(t, rec.New())

	rec.ApplyObservation(RecordData{"id": "pk-001", "name": "alpha"}, "fp-1", "run-1")
	assert.Equal(t, ActionDestinationInsert, rec.Action)
	assert.Equal(t, RecordStatusPending, rec.Status)
	require.NotNil(t, rec.SyncRunID)
	assert.Equal(t, "run-1", *rec.SyncRunID)
	assert.False(t, rec.New())

	// A changed sighting becomes an update attached to the newer run.
	rec.Status = RecordStatusSuccess
	rec.ErrorLogs = RecordData{"message": "stale"}
	rec.ApplyObservation(RecordData{"id": "pk-001", "name": "beta"}, "fp-2", "run-2")
	assert.Equal(t, ActionDestinationUpdate, rec.Action)
	assert.Equal(t, RecordStatusPending, rec.Status)
	assert.Equal(t, "run-2", *rec.SyncRunID)
	assert.Nil(t, rec.ErrorLogs)
}

func TestCursorValueString(t *testing.T) {
	assert.Equal(t, "", CursorValueString(nil))
	assert.Equal(t, "abc", CursorValueString("abc"))
	// JSON numbers arrive as float64; integral values render without a
	// decimal point.
	assert.Equal(t, "1002", CursorValueString(float64(1002)))
	assert.Equal(t, "3.25", CursorValueString(3.25))
	assert.Equal(t, "42", CursorValueString(42))
	assert.Equal(t, "42", CursorValueString(int64(42)))

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01T12:00:00Z", CursorValueString(ts))
}
