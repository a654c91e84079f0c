package migrate

import (
	"context"
	"fmt"

	"github.com/ogp-platform/proforma-backend/pkg/config"
	"github.com/ogp-platform/proforma-backend/pkg/db"
	"github.com/ogp-platform/proforma-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on boot when auto-migrate is enabled.
// Production deploys run cmd/migrate explicitly; this is a dev convenience.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || client == nil {
		return fmt.Errorf("config and db client are required")
	}
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if cfg.FeatureFlags.UseSQLite {
		if logg != nil {
			logg.Warn(ctx, "auto-migrate skipped: sqlite schema is managed by tests")
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql db handle: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "running pending migrations")
	}
	return Up(ctx, sqlDB, DefaultDir)
}
