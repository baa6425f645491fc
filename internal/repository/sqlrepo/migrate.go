package sqlrepo

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Migrate applies all pending goose migrations found under dir in the given
// filesystem. CreateSchema covers throwaway and test databases; migrations
// are the versioned path for managed deployments, and the two must not be
// mixed on the same database.
func Migrate(db *sql.DB, d Dialect, migrations fs.FS, dir string) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.GooseDialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *sql.DB, d Dialect, migrations fs.FS, dir string) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.GooseDialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Down(db, dir); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

// MigrationStatus prints the status of every known migration.
func MigrationStatus(db *sql.DB, d Dialect, migrations fs.FS, dir string) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(d.GooseDialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Status(db, dir); err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	return nil
}
