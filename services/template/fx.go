package template

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("template.service",
	fx.Provide(
		NewService,
	),
	fx.Invoke(registerSeeding),
)

func registerSeeding(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.SeedDefaults(ctx)
		},
	})
}
