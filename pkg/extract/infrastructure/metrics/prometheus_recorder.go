// Package metrics provides the Prometheus and OpenTelemetry implementations
// of the engine's observability contracts.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	metrics "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/metrics"
)

// PrometheusRecorder is a Prometheus implementation of
// metrics.MetricRecorder.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	runDurationSeconds *prometheus.HistogramVec
	runStatusCounter   *prometheus.CounterVec
	batchRowsCounter   *prometheus.CounterVec
	skippedRowsCounter *prometheus.CounterVec
	batchCounter       *prometheus.CounterVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		runDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "extract_run_duration_seconds",
			Help:    "Duration of extraction runs from dispatch to queued or terminal.",
			Buckets: prometheus.DefBuckets,
		}, []string{"workspace_id", "status"}),
		runStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extract_run_status_total",
			Help: "Total number of extraction runs by resulting status.",
		}, []string{"workspace_id", "status"}),
		batchRowsCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extract_batch_rows_total",
			Help: "Total rows processed across batches.",
		}, []string{"workspace_id"}),
		skippedRowsCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extract_skipped_rows_total",
			Help: "Total rows skipped as in-batch duplicates.",
		}, []string{"workspace_id"}),
		batchCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "extract_batch_total",
			Help: "Total committed batches.",
		}, []string{"workspace_id"}),
	}

	registry.MustRegister(r.runDurationSeconds)
	registry.MustRegister(r.runStatusCounter)
	registry.MustRegister(r.batchRowsCounter)
	registry.MustRegister(r.skippedRowsCounter)
	registry.MustRegister(r.batchCounter)

	return r
}

// Registry exposes the registry for the HTTP handler.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordRunStart implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordRunStart(_ context.Context, run *model.SyncRun) {
	r.runStatusCounter.WithLabelValues(run.WorkspaceID, model.RunStatusStarted.String()).Inc()
}

// RecordRunFinish implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordRunFinish(_ context.Context, run *model.SyncRun) {
	status := run.Status.String()
	r.runStatusCounter.WithLabelValues(run.WorkspaceID, status).Inc()

	end := time.Now()
	if run.FinishedAt != nil {
		end = *run.FinishedAt
	}
	r.runDurationSeconds.WithLabelValues(run.WorkspaceID, status).Observe(end.Sub(run.StartedAt).Seconds())
}

// RecordBatch implements metrics.MetricRecorder.
func (r *PrometheusRecorder) RecordBatch(_ context.Context, run *model.SyncRun, rows, skipped int) {
	r.batchCounter.WithLabelValues(run.WorkspaceID).Inc()
	r.batchRowsCounter.WithLabelValues(run.WorkspaceID).Add(float64(rows))
	r.skippedRowsCounter.WithLabelValues(run.WorkspaceID).Add(float64(skipped))
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
