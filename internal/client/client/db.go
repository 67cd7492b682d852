package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/shiftbook/internal/client/migrations"
	"github.com/dmitrijs2005/shiftbook/internal/client/repositories/days"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories bundles the local-store repositories used by client services.
type Repositories struct {
	Days *days.SQLiteRepository
	DB   *sql.DB
}

// RunMigrations applies the embedded goose migrations to the local database.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the local SQLite database, migrates it and
// returns the repository set.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	return &Repositories{
		Days: days.NewSQLiteRepository(db),
		DB:   db,
	}, nil
}
