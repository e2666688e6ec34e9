package extractor

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/engine/batcher"
)

// FullRefreshExtractor re-reads the whole model on every run. Unchanged rows
// are still filtered out by fingerprint, so a full refresh only stages what
// actually changed.
type FullRefreshExtractor struct {
	core *Core
}

// NewFullRefreshExtractor creates a FullRefreshExtractor.
func NewFullRefreshExtractor(core *Core) *FullRefreshExtractor {
	return &FullRefreshExtractor{core: core}
}

func (e *FullRefreshExtractor) name() string { return "full_refresh" }

func (e *FullRefreshExtractor) buildParams(sync *model.Sync, run *model.SyncRun, engine config.EngineConfig) batcher.Params {
	return batcher.Params{
		Source:    sync.Source,
		Query:     sync.Model.Query,
		Offset:    run.CurrentOffset,
		Limit:     engine.DefaultLimit,
		BatchSize: engine.DefaultBatchSize,
	}
}

func (e *FullRefreshExtractor) advancesCursor(*model.Sync) bool { return false }

// Extract implements port.Extractor.
func (e *FullRefreshExtractor) Extract(ctx context.Context, syncRunID string, handle port.ActivityHandle) error {
	sync, run, proceed, err := e.core.load(ctx, syncRunID)
	if err != nil || !proceed {
		return err
	}
	return e.core.execute(ctx, sync, run, handle, e)
}

var _ port.Extractor = (*FullRefreshExtractor)(nil)
