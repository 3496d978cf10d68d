package generate

import (
	"go.uber.org/fx"
)

var Module = fx.Module("generate.service",
	fx.Provide(
		NewProvider,
		NewService,
	),
)
