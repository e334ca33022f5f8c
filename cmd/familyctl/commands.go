package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"familytree/internal/backend"
	"familytree/internal/cache"
	"familytree/internal/config"
	"familytree/internal/docstore"
	"familytree/internal/logging"
	"familytree/internal/repository"
	"familytree/internal/service"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:           "familyctl",
		Short:         "Maintenance commands for the family tree",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			var err error
			logger, err = logging.New(cfg.LogLevel, "console", "familyctl")
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
)

func init() {
	rootCmd.AddCommand(migrateCmd, backupCmd, remindersCmd, hashPasswordCmd, legacyTemplateCmd)
}

// app is the opened store and the services commands run against
type app struct {
	store         docstore.Store
	relationships *service.RelationshipService
}

// openApp opens the configured store and loads the relationship cache
func openApp(ctx context.Context) (*app, error) {
	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	relationships := service.NewRelationshipService(repository.New(store), cache.New(), logger, time.Now)
	relationships.LoadAll(ctx)
	return &app{store: store, relationships: relationships}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
}
