package migration

import (
	"context"

	"go.uber.org/fx"
)

// Module provides the Migrator and applies pending migrations on startup.
var Module = fx.Options(
	fx.Provide(NewMigrator),
	fx.Invoke(func(lc fx.Lifecycle, m *Migrator) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return m.Up(ctx)
			},
		})
	}),
)
