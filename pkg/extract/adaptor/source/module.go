package source

import (
	"go.uber.org/fx"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
)

// Module provides the source client resolver.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewResolver, fx.As(new(port.SourceClientResolver))),
	),
)
