package migrate

import (
	"context"
	"fmt"

	"github.com/canteenhub/canteen-backend/pkg/config"
	"github.com/canteenhub/canteen-backend/pkg/db"
	"github.com/canteenhub/canteen-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at startup. It is a no-op
// outside dev mode or when the auto-migrate flag is off, so deployed
// environments always migrate through the CLI.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "applying migrations on startup")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "startup migrations applied")
	return nil
}
