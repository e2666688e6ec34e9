package metrics

import (
	"go.uber.org/fx"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	metrics "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/metrics"
)

// NewMetricRecorder returns the Prometheus recorder when metrics are enabled,
// otherwise the no-op recorder.
func NewMetricRecorder(cfg *config.Config, recorder *PrometheusRecorder) metrics.MetricRecorder {
	if !cfg.Extract.Metrics.Enabled {
		return metrics.NewNoopMetricRecorder()
	}
	return recorder
}

// Module provides the metric recorder, usage recorder and tracer.
var Module = fx.Options(
	fx.Provide(NewPrometheusRecorder),
	fx.Provide(NewMetricRecorder),
	fx.Provide(fx.Annotate(
		NewPrometheusUsageRecorder,
		fx.As(new(port.UsageRecorder)),
	)),
	fx.Provide(fx.Annotate(
		NewOtelTracer,
		fx.As(new(metrics.Tracer)),
	)),
)
