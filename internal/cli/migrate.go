package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"live-poll-service/internal/config"
	pgmigrations "live-poll-service/internal/infra/postgres/migrations"
	"live-poll-service/internal/logger"
)

// NewMigrateCmd applies the archive schema.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runMigrationsWithConfig(cmd.Context(), cfg, log)
		},
	}
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("archive schema up to date")
		return nil
	}
	log.Info("migrations applied", zap.String("group", group.String()))
	return nil
}
