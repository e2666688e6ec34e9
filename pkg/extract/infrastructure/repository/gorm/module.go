package gorm

import (
	"go.uber.org/fx"
)

// Module provides the GORM-backed SyncRepository.
var Module = fx.Options(
	fx.Provide(NewSyncRepository),
)
