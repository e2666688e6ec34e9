package usecase

import (
	"go.uber.org/fx"
)

// Module provides the application services.
var Module = fx.Options(
	fx.Provide(NewRunFinalizer),
	fx.Provide(NewSyncDeleter),
)
