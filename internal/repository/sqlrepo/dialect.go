package sqlrepo

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Dialect captures the differences between the supported SQL backends:
// driver registration name, key column DDL, and parameter placeholders.
type Dialect struct {
	// Name is the database/sql driver name.
	Name string
	// GooseDialect is the matching goose migration dialect.
	GooseDialect string
	// AutoKeyDef is the DDL for a backend-assigned int64 key column.
	AutoKeyDef string
	// TextKeyDef is the DDL for a client-generated string key column.
	TextKeyDef string

	placeholder func(n int) string
}

// SQLite is the dialect for modernc.org/sqlite. A DSN of ":memory:" gives a
// private in-memory database, which the tests rely on.
var SQLite = Dialect{
	Name:         "sqlite",
	GooseDialect: "sqlite3",
	AutoKeyDef:   "INTEGER PRIMARY KEY AUTOINCREMENT",
	TextKeyDef:   "TEXT PRIMARY KEY",
	placeholder:  func(int) string { return "?" },
}

// Postgres is the dialect for PostgreSQL via the pgx stdlib driver.
var Postgres = Dialect{
	Name:         "pgx",
	GooseDialect: "postgres",
	AutoKeyDef:   "BIGSERIAL PRIMARY KEY",
	TextKeyDef:   "TEXT PRIMARY KEY",
	placeholder:  func(n int) string { return fmt.Sprintf("$%d", n) },
}

// ForDriver resolves a configured driver name to a dialect.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Open opens a database handle for the dialect. The caller owns the handle
// and should ping it before relying on the connection.
func Open(d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// placeholders renders a comma-separated parameter list starting at
// position from, e.g. "$2, $3, $4" for Postgres or "?, ?, ?" for SQLite.
func (d Dialect) placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}
