// Package sqlite implements the product repository on an embedded SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/localbasket/storefront/db"
)

// Open opens (creating if needed) the SQLite database at path. The busy
// timeout keeps concurrent readers from failing while the seeder writes.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}
	return conn, nil
}

// RunMigrations executes the embedded DDL schema.
func RunMigrations(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, db.Schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
