package main

import (
	"embed"

	"github.com/spf13/cobra"

	"rowstore/internal/repository/sqlrepo"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationDir picks the per-driver migration set.
func migrationDir(d sqlrepo.Dialect) string {
	if d.Name == sqlrepo.Postgres.Name {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run versioned schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, dialect, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return sqlrepo.Migrate(db, dialect, migrationsFS, migrationDir(dialect))
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, dialect, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return sqlrepo.MigrateDown(db, dialect, migrationsFS, migrationDir(dialect))
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, dialect, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		return sqlrepo.MigrationStatus(db, dialect, migrationsFS, migrationDir(dialect))
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}
