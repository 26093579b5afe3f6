package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"tasktracker/internal/config"
	"tasktracker/internal/database"
	"tasktracker/internal/logger"
)

const usage = `Usage: migrate <command> [args]

Runs goose commands against the embedded Postgres migrations.

Commands:
  up                   Migrate to the most recent version
  up-to VERSION        Migrate up to VERSION
  down                 Roll back one version
  down-to VERSION      Roll back to VERSION
  redo                 Re-run the latest migration
  reset                Roll back all migrations
  status               Print the status of all migrations
  version              Print the current schema version
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, os.Stderr)

	if cfg.DBDriver != config.DriverPostgres {
		log.Error("migrations only apply to the postgres driver", "driver", cfg.DBDriver)
		os.Exit(2)
	}

	if err := run(cfg, command, args); err != nil {
		log.Error("❌ migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	log.Info("✅ migration finished", "command", command)
}

func run(cfg *config.Config, command string, args []string) error {
	db, err := database.OpenPostgres(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer database.ClosePostgres(db)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return database.RunMigrations(sqlDB, command, args...)
}
