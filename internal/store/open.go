package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleetbooking/pkg/config"
	"fleetbooking/pkg/db"
)

// Open builds the store selected by STORE_DRIVER. For postgres it opens the pool and, when MIGRATIONS_PATH is
// set, applies migrations first. The returned func releases the backend.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory record store; data is lost on exit")
		return NewMemory(), func() {}, nil
	case "", "postgres":
		if cfg.MigrationsPath != "" {
			if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return NewPostgres(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
