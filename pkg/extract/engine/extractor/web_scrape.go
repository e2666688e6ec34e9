package extractor

import (
	"context"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
	model "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/model"
	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/engine/batcher"
)

// WebScrapeExtractor handles scrape models: the client fetches the page
// content in a single read and the fingerprint decides whether anything
// changed since the last run. There is no resume offset; a scrape always
// starts over.
type WebScrapeExtractor struct {
	core *Core
}

// NewWebScrapeExtractor creates a WebScrapeExtractor.
func NewWebScrapeExtractor(core *Core) *WebScrapeExtractor {
	return &WebScrapeExtractor{core: core}
}

func (e *WebScrapeExtractor) name() string { return "web_scrape" }

func (e *WebScrapeExtractor) buildParams(sync *model.Sync, _ *model.SyncRun, engine config.EngineConfig) batcher.Params {
	return batcher.Params{
		Source:     sync.Source,
		Query:      sync.Model.Query,
		Offset:     0,
		Limit:      engine.DefaultLimit,
		SingleShot: true,
	}
}

func (e *WebScrapeExtractor) advancesCursor(*model.Sync) bool { return false }

// Extract implements port.Extractor.
func (e *WebScrapeExtractor) Extract(ctx context.Context, syncRunID string, handle port.ActivityHandle) error {
	sync, run, proceed, err := e.core.load(ctx, syncRunID)
	if err != nil || !proceed {
		return err
	}
	return e.core.execute(ctx, sync, run, handle, e)
}

var _ port.Extractor = (*WebScrapeExtractor)(nil)
