package notification

import (
	"context"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

const defaultQueueDepth = 128

// ChannelAlertQueue buffers terminal run outcomes for the alert evaluator.
// Enqueueing never blocks the engine; when the buffer is full the outcome is
// dropped with a warning.
type ChannelAlertQueue struct {
	checker port.AlertSubscriptionChecker
	queue   chan *model.SyncRun
}

// NewChannelAlertQueue creates an alert queue gated by the subscription
// checker.
func NewChannelAlertQueue(checker port.AlertSubscriptionChecker) *ChannelAlertQueue {
	return &ChannelAlertQueue{
		checker: checker,
		queue:   make(chan *model.SyncRun, defaultQueueDepth),
	}
}

// EnqueueRunAlert implements port.AlertQueue. Workspaces without active alert
// subscriptions are filtered out before anything is enqueued.
func (q *ChannelAlertQueue) EnqueueRunAlert(ctx context.Context, run *model.SyncRun) {
	if !q.checker.HasActiveAlerts(ctx, run.WorkspaceID) {
		return
	}
	select {
	case q.queue <- run:
	default:
		logger.Warnf("Alert queue full, dropping run alert: run=%s workspace=%s", run.ID, run.WorkspaceID)
	}
}

// Dequeue exposes the buffered outcomes to the alert evaluator.
func (q *ChannelAlertQueue) Dequeue() <-chan *model.SyncRun {
	return q.queue
}

var _ port.AlertQueue = (*ChannelAlertQueue)(nil)

// StaticSubscriptionChecker reports a fixed subscription state. The real
// checker lives in the control plane; workers default to active.
type StaticSubscriptionChecker struct {
	Active bool
}

// NewStaticSubscriptionChecker creates a checker that always reports active
// subscriptions.
func NewStaticSubscriptionChecker() *StaticSubscriptionChecker {
	return &StaticSubscriptionChecker{Active: true}
}

// HasActiveAlerts implements port.AlertSubscriptionChecker.
func (c *StaticSubscriptionChecker) HasActiveAlerts(context.Context, string) bool {
	return c.Active
}

var _ port.AlertSubscriptionChecker = (*StaticSubscriptionChecker)(nil)
