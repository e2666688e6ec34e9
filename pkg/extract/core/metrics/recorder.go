package metrics

import (
	"context"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// MetricRecorder records extraction metrics. Implementations must be safe for
// concurrent use across runs.
type MetricRecorder interface {
	// RecordRunStart records the dispatch of a run to the engine.
	RecordRunStart(ctx context.Context, run *model.SyncRun)
	// RecordRunFinish records a run reaching a terminal or queued state.
	RecordRunFinish(ctx context.Context, run *model.SyncRun)
	// RecordBatch records one processed batch with its row and skip counts.
	RecordBatch(ctx context.Context, run *model.SyncRun, rows, skipped int)
}

// NoopMetricRecorder is a MetricRecorder that does nothing. It is the default
// when no metrics backend is wired.
type NoopMetricRecorder struct{}

// NewNoopMetricRecorder creates a new NoopMetricRecorder.
func NewNoopMetricRecorder() MetricRecorder {
	return &NoopMetricRecorder{}
}

func (NoopMetricRecorder) RecordRunStart(ctx context.Context, run *model.SyncRun)             {}
func (NoopMetricRecorder) RecordRunFinish(ctx context.Context, run *model.SyncRun)            {}
func (NoopMetricRecorder) RecordBatch(ctx context.Context, run *model.SyncRun, rows, skipped int) {}

var _ MetricRecorder = (*NoopMetricRecorder)(nil)
