package extractor

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/engine/batcher"
)

// IncrementalExtractor bounds each read by the Sync's cursor so only rows at
// or past the last observed cursor value are queried. The cursor only
// advances after the run reaches queued.
type IncrementalExtractor struct {
	core *Core
}

// NewIncrementalExtractor creates an IncrementalExtractor.
func NewIncrementalExtractor(core *Core) *IncrementalExtractor {
	return &IncrementalExtractor{core: core}
}

func (e *IncrementalExtractor) name() string { return "incremental" }

func (e *IncrementalExtractor) buildParams(sync *model.Sync, run *model.SyncRun, engine config.EngineConfig) batcher.Params {
	return batcher.Params{
		Source:      sync.Source,
		Query:       sync.Model.Query,
		CursorField: sync.CursorField,
		CursorValue: sync.CurrentCursor,
		Offset:      run.CurrentOffset,
		Limit:       engine.DefaultLimit,
		BatchSize:   engine.DefaultBatchSize,
	}
}

func (e *IncrementalExtractor) advancesCursor(sync *model.Sync) bool {
	return sync.Incremental()
}

// Extract implements port.Extractor.
func (e *IncrementalExtractor) Extract(ctx context.Context, syncRunID string, handle port.ActivityHandle) error {
	sync, run, proceed, err := e.core.load(ctx, syncRunID)
	if err != nil || !proceed {
		return err
	}
	return e.core.execute(ctx, sync, run, handle, e)
}

var _ port.Extractor = (*IncrementalExtractor)(nil)
