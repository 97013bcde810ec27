// Package migrations applies the embedded SQLite schema with goose.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

const dir = "sqlite"

var setupOnce sync.Once

func setup() {
	setupOnce.Do(func() {
		goose.SetBaseFS(SQLite)
		if err := goose.SetDialect("sqlite3"); err != nil {
			panic(fmt.Sprintf("goose dialect: %v", err))
		}
	})
}

// Up migrates the SQLite schema to the latest version.
func Up(db *sql.DB) error {
	return UpContext(context.Background(), db)
}

// UpContext is Up with cancellation.
func UpContext(ctx context.Context, db *sql.DB) error {
	setup()
	return goose.UpContext(ctx, db, dir)
}

// Down rolls back a single migration.
func Down(db *sql.DB) error {
	setup()
	return goose.Down(db, dir)
}

// Status prints migration status.
func Status(db *sql.DB) error {
	setup()
	return goose.Status(db, dir)
}

// Version reports the current schema version.
func Version(db *sql.DB) (int64, error) {
	setup()
	return goose.GetDBVersion(db)
}
