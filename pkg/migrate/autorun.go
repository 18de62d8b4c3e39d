package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/counterpos/pkg/config"
	"github.com/angelmondragon/counterpos/pkg/db"
	"github.com/angelmondragon/counterpos/pkg/logger"
)

// MaybeRun applies pending migrations at startup when auto-migrate is enabled
// or the store runs on sqlite, where there is no separate migrate step.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.DB.AutoMigrate && !cfg.DB.IsSQLite() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Driver()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Driver(), "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
