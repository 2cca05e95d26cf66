package achievement

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/quitsmart/pkg/config"
)

func seedCatalog(lc fx.Lifecycle, s *Service, cfg *config.Config, log *zap.SugaredLogger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n, err := s.SeedCatalog(ctx, cfg.Achievements)
			if err != nil {
				return err
			}
			log.Infow("achievement_catalog_seeded", "added", n)
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(seedCatalog),
)
