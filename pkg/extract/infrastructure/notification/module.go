package notification

import (
	"go.uber.org/fx"

	port "github.com/Multiwoven/multiwoven-sub000/pkg/extract/core/application/port"
)

// Module provides the notifier, the alert queue and its subscription checker.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewLogNotifier,
		fx.As(new(port.Notifier)),
	)),
	fx.Provide(fx.Annotate(
		NewStaticSubscriptionChecker,
		fx.As(new(port.AlertSubscriptionChecker)),
	)),
	fx.Provide(fx.Annotate(
		NewChannelAlertQueue,
		fx.As(new(port.AlertQueue)),
	)),
)
