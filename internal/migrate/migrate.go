// Package migrate applies the SQL schema migrations with goose before
// the rest of the process starts taking traffic.
package migrate

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// DefaultDir is where migrations live relative to the working
// directory when the config does not name a location.
const DefaultDir = "db/migrations"

// Run brings the schema up to date. It opens a dedicated short-lived
// connection rather than borrowing the store's pool, so a failed
// migration leaves nothing half-initialized behind.
func Run(dsn, dir string) error {
	if dir == "" {
		dir = DefaultDir
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("apply migrations from %s: %w", dir, err)
	}
	return nil
}
