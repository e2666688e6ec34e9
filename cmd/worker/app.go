package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	gormadaptor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm"
	_ "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm/mysql"
	_ "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm/postgres"
	_ "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/database/gorm/sqlite"
	source "github.com/Multiwoven/multiwoven-sub000/pkg/extract/adaptor/source"
	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	usecase "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/usecase"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	extractor "github.com/Multiwoven/multiwoven-sub000/pkg/extract/engine/extractor"
	metricsinfra "github.com/Multiwoven/multiwoven-sub000/pkg/extract/infrastructure/metrics"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/infrastructure/migration"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/infrastructure/notification"
	gormrepo "github.com/Multiwoven/multiwoven-sub000/pkg/extract/infrastructure/repository/gorm"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/exception"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// workerHandle adapts the worker's context to the engine's activity handle.
// Cancellation arrives via OS signals that cancel the context; heartbeats are
// logged.
type workerHandle struct {
	ctx context.Context
}

func (h *workerHandle) Heartbeat(_ context.Context, details ...string) {
	if len(details) > 0 {
		logger.Debugf("Heartbeat: %v", details)
	}
}

func (h *workerHandle) CancelRequested() bool {
	return h.ctx.Err() != nil
}

// RunApplication assembles the fx application and drives one extraction run
// to completion.
func RunApplication(appCtx context.Context, envFilePath string, embedded config.EmbeddedConfig, syncRunID string) {
	cfg, err := config.LoadConfig(envFilePath, embedded)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	app := fx.New(
		fx.Supply(
			cfg,
			fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
			fx.Annotate(syncRunID, fx.ResultTags(`name:"syncRunID"`)),
		),

		gormadaptor.Module,
		migration.Module,
		gormrepo.Module,
		source.Module,
		metricsinfra.Module,
		notification.Module,
		usecase.Module,
		extractor.Module,

		fx.Invoke(serveMetrics),
		fx.Invoke(fx.Annotate(startExtraction, fx.ParamTags(
			"", // lc fx.Lifecycle
			"", // shutdowner fx.Shutdowner
			"", // ext port.Extractor
			"", // finalizer *usecase.RunFinalizer
			`name:"appCtx"`,
			`name:"syncRunID"`,
		))),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Worker failed: %v", app.Err())
	}
}

// startExtraction runs the extraction once the application started, then
// shuts the worker down. A failed run is finalized before exiting so it never
// dangles in a non-terminal state.
func startExtraction(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	ext port.Extractor,
	finalizer *usecase.RunFinalizer,
	appCtx context.Context,
	syncRunID string,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				err := ext.Extract(appCtx, syncRunID, &workerHandle{ctx: appCtx})
				if err != nil {
					if exception.IsCancelRequested(err) {
						logger.Warnf("Run %s canceled", syncRunID)
					} else {
						logger.Errorf("Run %s failed: %v", syncRunID, err)
					}
					// The finalizer owns the terminal transition for both
					// failures and cancellations.
					if ferr := finalizer.UpdateFailure(context.Background(), syncRunID, err); ferr != nil {
						logger.Errorf("Failed to finalize run %s: %v", syncRunID, ferr)
					}
					_ = shutdowner.Shutdown(fx.ExitCode(1))
					return
				}
				logger.Infof("Run %s extraction complete, records staged for delivery", syncRunID)
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
	})
}

// serveMetrics exposes the Prometheus registry over HTTP when a listen
// address is configured.
func serveMetrics(lc fx.Lifecycle, cfg *config.Config, recorder *metricsinfra.PrometheusRecorder) {
	if !cfg.Extract.Metrics.Enabled || cfg.Extract.Metrics.ListenAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{}))
	server := &http.Server{Addr: cfg.Extract.Metrics.ListenAddr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Errorf("Metrics listener failed: %v", err)
				}
			}()
			logger.Infof("Serving metrics on %s", cfg.Extract.Metrics.ListenAddr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
