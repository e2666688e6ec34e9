// Package port defines the contracts between the extraction engine and its
// external collaborators: the workflow runtime, source connector clients, and
// the alerting/metering subsystems.
package port

import (
	"context"
	"time"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// Record is one raw row emitted by a source client: a field map plus the
// emission timestamp.
type Record struct {
	Data      model.RecordData
	EmittedAt time.Time
}

// ReadParams carries the resolved query parameters for one source read. The
// offset/limit (or page/per-page) values are exposed both as typed fields and
// under the connector-specific variable names in Variables.
type ReadParams struct {
	// Query is the model query or table selector, already bounded by the
	// cursor for incremental runs.
	Query string
	// CursorField and CursorValue bound incremental reads; both are empty for
	// full-refresh reads.
	CursorField string
	CursorValue string
	// Variables maps the connector-specific variable names (e.g.
	// "offset"/"limit" or "page"/"per_page") to their resolved values.
	Variables map[string]int64
	// Source is the protocol-level connector configuration for this run.
	Source model.SourceConfig
}

// SourceClient is a per-connector client the engine drives to pull raw
// records. Implementations own connection handling, query construction for
// their protocol, and rate limiting.
type SourceClient interface {
	Read(ctx context.Context, params ReadParams) ([]Record, error)
}

// SourceClientResolver resolves the SourceClient for a Sync's source
// connector. Connection establishment and credential handling live behind it.
type SourceClientResolver interface {
	ClientFor(ctx context.Context, sync *model.Sync) (SourceClient, error)
}

// ActivityHandle is provided by the external workflow runtime that drives a
// run. The engine heartbeats through it after every processed batch and polls
// it for cooperative cancellation.
type ActivityHandle interface {
	// Heartbeat reports liveness and optionally partial cursor progress so
	// the runtime can persist it out-of-band.
	Heartbeat(ctx context.Context, details ...string)
	// CancelRequested reports whether the runtime asked for cancellation.
	// Cancellation is polled between batches, never preemptive.
	CancelRequested() bool
}

// Extractor is the engine's entry point, invoked by the workflow runtime with
// a dispatched run id. If the run is not in started status the call returns
// without side effects.
type Extractor interface {
	Extract(ctx context.Context, syncRunID string, handle ActivityHandle) error
}

// Notifier is the fire-and-forget hook invoked exactly once when a run
// transitions into a terminal success or failure. Filtering and delivery are
// the alerting subsystem's concern.
type Notifier interface {
	NotifyRunFinished(ctx context.Context, sync *model.Sync, run *model.SyncRun)
}

// AlertSubscriptionChecker tells the alert-queue hook whether the owning
// workspace has active alert subscriptions before anything is enqueued.
type AlertSubscriptionChecker interface {
	HasActiveAlerts(ctx context.Context, workspaceID string) bool
}

// AlertQueue enqueues a terminal run outcome for alert evaluation.
type AlertQueue interface {
	EnqueueRunAlert(ctx context.Context, run *model.SyncRun)
}

// UsageRecorder receives fire-and-forget usage increments for billing. It is
// called only when a run's successful row count increases, with exactly the
// delta of the increase.
type UsageRecorder interface {
	RecordSuccessfulRows(ctx context.Context, workspaceID string, delta int64)
}
