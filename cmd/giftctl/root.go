package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nextstep/gift/internal/config"
	"github.com/nextstep/gift/internal/database"
	"github.com/nextstep/gift/internal/logger"
)

type env struct {
	cfg    config.Config
	logger *slog.Logger
	db     *database.DB
}

func newRootCommand() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:          "giftctl",
		Short:        "Manage the gift shop database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return e.close()
		},
	}

	root.AddCommand(newMigrateCommand(e), newSeedCommand(e))
	return root
}

func (e *env) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DataBackend == config.BackendMemory {
		return errors.New("giftctl requires DATA_BACKEND=sqlite or DATA_BACKEND=mysql")
	}

	e.cfg = cfg
	e.logger = logger.New(cfg.Env, cfg.LogLevel)
	e.db, err = database.Connect(ctx, database.Options{
		Driver:          cfg.DatabaseDriver(),
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		Logger:          e.logger,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	return nil
}

func (e *env) close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}
