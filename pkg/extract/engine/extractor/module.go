package extractor

import (
	"go.uber.org/fx"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
)

// Module provides the extraction core, the variant factory and the
// dispatching engine.
var Module = fx.Options(
	fx.Provide(NewCore),
	fx.Provide(NewFactory),
	fx.Provide(fx.Annotate(
		NewEngine,
		fx.As(new(port.Extractor)),
	)),
)
