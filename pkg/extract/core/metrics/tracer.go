package metrics

import "context"

// Tracer traces extraction runs and batches. The OpenTelemetry implementation
// lives in infrastructure/metrics; exporter wiring belongs to the platform.
type Tracer interface {
	// StartRunSpan opens a span covering one extraction run. The returned
	// function ends the span.
	StartRunSpan(ctx context.Context, syncID, runID string) (context.Context, func(err error))
	// StartBatchSpan opens a span covering one processed batch.
	StartBatchSpan(ctx context.Context, runID string, batchNumber int) (context.Context, func(err error))
}

// NoopTracer is a Tracer that does nothing.
type NoopTracer struct{}

// NewNoopTracer creates a new NoopTracer.
func NewNoopTracer() Tracer {
	return &NoopTracer{}
}

func (NoopTracer) StartRunSpan(ctx context.Context, syncID, runID string) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

func (NoopTracer) StartBatchSpan(ctx context.Context, runID string, batchNumber int) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

var _ Tracer = (*NoopTracer)(nil)
