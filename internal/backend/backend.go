// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"familytree/internal/config"
	"familytree/internal/database"
	"familytree/internal/docstore"
	"familytree/internal/docstore/badgerstore"
	"familytree/internal/docstore/memory"
	"familytree/internal/docstore/sqlstore"
)

// Open returns the configured, instrumented document store.
// SQL backends are migrated before they are returned.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (docstore.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using in-memory document store, data will not persist")
		return docstore.Instrument("memory", memory.New()), nil

	case "badger":
		s, err := badgerstore.Open(badgerstore.Config{
			Path:       cfg.BadgerPath,
			SyncWrites: true,
			Logger:     logger.Named("badger"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		logger.Info("document store opened", zap.String("driver", "badger"), zap.String("path", cfg.BadgerPath))
		return docstore.Instrument("badger", s), nil

	case "sqlite", "sqlite3", "postgres", "postgresql", "mysql":
		dialect, err := database.DialectFor(cfg.StoreDriver)
		if err != nil {
			return nil, err
		}
		db, err := database.Open(ctx, cfg.StoreDriver, database.DialectConfig{
			Path: cfg.DatabasePath,
			URL:  cfg.DatabaseURL,
		})
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(ctx, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("document store opened", zap.String("driver", dialect.MigrationsSubdir()))
		return docstore.Instrument(dialect.MigrationsSubdir(), sqlstore.New(db)), nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}
