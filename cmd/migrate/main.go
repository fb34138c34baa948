package main

// Apply, roll back or inspect database migrations:
//   go run ./cmd/migrate [--down | --status]

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"resume-tracker/internal/shared/config"
	"resume-tracker/internal/shared/storage/db"
	"resume-tracker/internal/shared/telemetry"
)

type options struct {
	Down   bool `long:"down" description:"Roll back the most recent migration"`
	Status bool `long:"status" description:"Print migration status without changing the schema"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	dir := db.Up
	switch {
	case opts.Down && opts.Status:
		telemetry.Error("migrate.flags", map[string]any{"error": "--down and --status are exclusive"})
		os.Exit(2)
	case opts.Down:
		dir = db.Down
	case opts.Status:
		dir = db.Status
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		telemetry.Error("migrate.config", map[string]any{"error": "DATABASE_URL is not set"})
		os.Exit(1)
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	version, err := db.Migrate(ctx, sqlDB, dir)
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"direction": string(dir), "error": err})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"direction": string(dir), "version": version})
}
