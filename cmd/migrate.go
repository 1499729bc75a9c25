package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/storage/sqlstore"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	switch cfg.Storage.Driver {
	case internal.StorageDriverPostgres:
		return migratePostgres(ctx, cfg.Storage)
	case internal.StorageDriverSQLite:
		// opening a sqlite store creates kv_entries
		store, err := sqlstore.Open(cfg.Storage.Driver, cfg.Storage.Source, sqlstore.Options{})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sqlite schema is up to date")
		return store.Close()
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "storage driver %q has no schema to migrate\n", cfg.Storage.Driver)
		return nil
	}
}

func migratePostgres(ctx context.Context, cfg internal.StorageConfig) error {
	db, err := initDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose: %w", err)
	}
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db.DB, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// initDB initializes the database connection
func initDB(cfg internal.StorageConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.PingContext(context.Background()); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
