package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// PrometheusUsageRecorder implements port.UsageRecorder on a Prometheus
// counter. Billing consumes the exported series; the engine only ever
// reports positive deltas of successful rows.
type PrometheusUsageRecorder struct {
	usageRows *prometheus.CounterVec
}

// NewPrometheusUsageRecorder creates a usage recorder registered on the
// shared registry.
func NewPrometheusUsageRecorder(recorder *PrometheusRecorder) *PrometheusUsageRecorder {
	usageRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workspace_usage_rows_total",
		Help: "Total successfully delivered rows per workspace, for usage metering.",
	}, []string{"workspace_id"})
	recorder.Registry().MustRegister(usageRows)

	return &PrometheusUsageRecorder{usageRows: usageRows}
}

// RecordSuccessfulRows implements port.UsageRecorder.
func (r *PrometheusUsageRecorder) RecordSuccessfulRows(_ context.Context, workspaceID string, delta int64) {
	if delta <= 0 {
		return
	}
	r.usageRows.WithLabelValues(workspaceID).Add(float64(delta))
	logger.Debugf("Usage recorded: workspace=%s rows=%d", workspaceID, delta)
}

var _ port.UsageRecorder = (*PrometheusUsageRecorder)(nil)
