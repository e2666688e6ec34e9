package inmemory

import (
	"go.uber.org/fx"

	repo "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/domain/repository"
)

// Module provides the in-memory repository and its no-op transaction
// manager, used in DB-less mode.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewRepository,
		fx.As(new(repo.SyncRepository)),
	)),
	fx.Provide(NewTxManager),
)
