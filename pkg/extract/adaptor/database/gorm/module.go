package gorm

import (
	"context"

	"go.uber.org/fx"

	config "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/config"
)

// NewMetadataConnection resolves the connection the repositories run on, as
// named by extract.infrastructure.repository_db_ref.
func NewMetadataConnection(lc fx.Lifecycle, cfg *config.Config, provider *Provider) (*Connection, error) {
	conn, err := provider.Connection(cfg.Extract.Infrastructure.RepositoryDBRef)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.CloseAll()
		},
	})
	return conn, nil
}

// Module provides the GORM connection provider, the metadata connection and
// its transaction manager.
var Module = fx.Options(
	fx.Provide(NewProvider),
	fx.Provide(NewMetadataConnection),
	fx.Provide(NewGormTransactionManager),
)
