package migrate

import (
	"context"

	"github.com/simkidd/dwec-winery-storefront/pkg/config"
	"github.com/simkidd/dwec-winery-storefront/pkg/db"
	"github.com/simkidd/dwec-winery-storefront/pkg/logger"
)

// MaybeRunDev applies pending migrations on boot when auto-migrate is
// enabled. Intended for development; production deploys run goose explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.App.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQLDB()
	if err != nil {
		return err
	}

	if logg != nil {
		logg.Info(ctx, "running pending migrations")
	}
	return Run(ctx, sqlDB, DefaultDir, "up")
}
