package extractor

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/engine/batcher"
)

// HTTPExtractor drives page-style API sources: one page per batch, resumed
// after the last completed page. Cursor bounding applies when the Sync is
// incremental and the API supports a cursor parameter.
type HTTPExtractor struct {
	core *Core
}

// NewHTTPExtractor creates an HTTPExtractor.
func NewHTTPExtractor(core *Core) *HTTPExtractor {
	return &HTTPExtractor{core: core}
}

func (e *HTTPExtractor) name() string { return "http" }

func (e *HTTPExtractor) buildParams(sync *model.Sync, run *model.SyncRun, engine config.EngineConfig) batcher.Params {
	params := batcher.Params{
		Source: sync.Source,
		Query:  sync.Model.Query,
		Offset: run.CurrentOffset,
		// Limit is the per-page fallback when the source declares no page
		// size of its own.
		Limit:     engine.DefaultLimit,
		BatchSize: engine.DefaultBatchSize,
	}
	if sync.Incremental() {
		params.CursorField = sync.CursorField
		params.CursorValue = sync.CurrentCursor
	}
	return params
}

func (e *HTTPExtractor) advancesCursor(sync *model.Sync) bool {
	return sync.Incremental()
}

// Extract implements port.Extractor.
func (e *HTTPExtractor) Extract(ctx context.Context, syncRunID string, handle port.ActivityHandle) error {
	sync, run, proceed, err := e.core.load(ctx, syncRunID)
	if err != nil || !proceed {
		return err
	}
	return e.core.execute(ctx, sync, run, handle, e)
}

var _ port.Extractor = (*HTTPExtractor)(nil)
