package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// Direction selects what Migrate does with the embedded migrations.
type Direction string

const (
	Up     Direction = "up"
	Down   Direction = "down"
	Status Direction = "status"
)

// RunMigrations applies every pending migration. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	_, err := Migrate(ctx, database, Up)
	return err
}

// Migrate runs the embedded goose migrations in the given direction and
// returns the schema version afterwards.
func Migrate(ctx context.Context, database *sql.DB, dir Direction) (int64, error) {
	if database == nil {
		return 0, nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, err
	}

	var err error
	switch dir {
	case Up, "":
		err = goose.UpContext(ctx, database, migrationsDir)
	case Down:
		err = goose.DownContext(ctx, database, migrationsDir)
	case Status:
		err = goose.StatusContext(ctx, database, migrationsDir)
	default:
		return 0, fmt.Errorf("unknown migration direction %q", dir)
	}
	if err != nil {
		return 0, fmt.Errorf("migrate %s: %w", dir, err)
	}
	return goose.GetDBVersionContext(ctx, database)
}
