package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	metrics "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/metrics"
)

const tracerName = "extract/engine"

// OtelTracer implements metrics.Tracer on OpenTelemetry. Exporter wiring is
// the platform's concern; without one the global provider is a no-op.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer creates an OtelTracer on the global tracer provider.
func NewOtelTracer() *OtelTracer {
	return &OtelTracer{tracer: otel.Tracer(tracerName)}
}

func end(span trace.Span) func(err error) {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// StartRunSpan implements metrics.Tracer.
func (t *OtelTracer) StartRunSpan(ctx context.Context, syncID, runID string) (context.Context, func(err error)) {
	ctx, span := t.tracer.Start(ctx, "extract.run",
		trace.WithAttributes(
			attribute.String("sync.id", syncID),
			attribute.String("sync.run_id", runID),
		))
	return ctx, end(span)
}

// StartBatchSpan implements metrics.Tracer.
func (t *OtelTracer) StartBatchSpan(ctx context.Context, runID string, batchNumber int) (context.Context, func(err error)) {
	ctx, span := t.tracer.Start(ctx, "extract.batch",
		trace.WithAttributes(
			attribute.String("sync.run_id", runID),
			attribute.Int("batch.number", batchNumber),
		))
	return ctx, end(span)
}

var _ metrics.Tracer = (*OtelTracer)(nil)
