package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/merchant-crm/internal/config"
	"github.com/spec-kit/merchant-crm/internal/observability"
	"github.com/spec-kit/merchant-crm/internal/persistence"
)

var rootCmd = &cobra.Command{
	Use:           "crm",
	Short:         "Merchant CRM: tickets, contacts, tasks and the ticket board",
	SilenceUsage:  true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(boardCmd)
}

// env holds what every subcommand needs before doing its own work.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func bootstrap(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return nil, errors.New("config: POSTGRES_DSN is required")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return &env{cfg: cfg, logger: logger, pg: pg}, nil
}

func (r *env) close() {
	r.pg.Close()
	_ = r.logger.Sync()
}
