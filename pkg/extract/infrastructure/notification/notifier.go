// Package notification implements the terminal-run hooks: a logging
// notifier and an in-process alert queue.
package notification

import (
	"context"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// LogNotifier implements port.Notifier by writing a structured line per
// finished run. Delivery to external channels (email, Slack) is the alerting
// subsystem's concern.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// NotifyRunFinished implements port.Notifier.
func (n *LogNotifier) NotifyRunFinished(_ context.Context, sync *model.Sync, run *model.SyncRun) {
	logger.Infof("Run finished: workspace=%s sync=%s run=%s status=%s total=%d successful=%d failed=%d skipped=%d failure_pct=%.2f",
		run.WorkspaceID, sync.ID, run.ID, run.Status,
		run.TotalRows, run.SuccessfulRows, run.FailedRows, run.SkippedRows, run.RowFailurePercent())
}

var _ port.Notifier = (*LogNotifier)(nil)
