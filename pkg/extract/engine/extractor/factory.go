package extractor

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
)

// Factory selects the extraction variant for a Sync.
type Factory struct {
	core *Core
}

// NewFactory creates a Factory over the shared core.
func NewFactory(core *Core) *Factory {
	return &Factory{core: core}
}

// variantFor picks the variant from the model's query type, the source's
// pagination style and the Sync mode, in that precedence order.
func (f *Factory) variantFor(sync *model.Sync) variant {
	switch {
	case sync.Model.QueryType == model.QueryTypeWebScrape:
		return NewWebScrapeExtractor(f.core)
	case sync.Source.IncrementType == model.IncrementTypePage:
		return NewHTTPExtractor(f.core)
	case sync.Incremental():
		return NewIncrementalExtractor(f.core)
	default:
		return NewFullRefreshExtractor(f.core)
	}
}

// For returns the port.Extractor for a Sync.
func (f *Factory) For(sync *model.Sync) port.Extractor {
	return f.variantFor(sync).(port.Extractor)
}

// Engine is the dispatching Extractor handed to the workflow runtime: it
// loads the run, picks the variant for its Sync and executes it.
type Engine struct {
	core    *Core
	factory *Factory
}

// NewEngine creates the dispatching Engine.
func NewEngine(core *Core, factory *Factory) *Engine {
	return &Engine{core: core, factory: factory}
}

// Extract implements port.Extractor.
func (e *Engine) Extract(ctx context.Context, syncRunID string, handle port.ActivityHandle) error {
	sync, run, proceed, err := e.core.load(ctx, syncRunID)
	if err != nil || !proceed {
		return err
	}
	return e.core.execute(ctx, sync, run, handle, e.factory.variantFor(sync))
}

var _ port.Extractor = (*Engine)(nil)
