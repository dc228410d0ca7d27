package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"fleetbooking/internal/store"
	"fleetbooking/pkg/config"
	"fleetbooking/pkg/db"
	"fleetbooking/pkg/logger"
)

func main() {
	path := flag.String("path", "", "migrations source (defaults to MIGRATIONS_PATH, then file://migrations)")
	flag.Parse()

	cfg := config.Load()
	switch {
	case *path != "":
		cfg.MigrationsPath = *path
	case cfg.MigrationsPath == "":
		cfg.MigrationsPath = "file://migrations"
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	// This uses DIRECT_URL if set (recommended for Supabase migrations).
	if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
		zl.Fatal("migrate failed", zap.String("source", cfg.MigrationsPath), zap.Error(err))
	}

	// Sanity check through the runtime connection (DATABASE_URL if set): the record store must answer.
	// DSNs are never logged.
	ctx := context.Background()
	pool, err := db.Open(ctx, cfg)
	if err != nil {
		zl.Fatal("runtime db open failed", zap.Error(err))
	}
	defer pool.Close()

	if _, err := store.NewPostgres(pool).Get(ctx, "migrate:probe"); err != nil && !errors.Is(err, store.ErrNotFound) {
		zl.Fatal("record store check failed", zap.Error(err))
	}

	zl.Info("migrations applied", zap.String("source", cfg.MigrationsPath))
}
