// Package main is the database migration tool.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"savdo/internal/infrastructure/config"
	"savdo/pkg/logger"
)

const defaultMigrationsPath = "migrations"

func main() {
	var migrationsPath string
	flag.StringVar(&migrationsPath, "path", defaultMigrationsPath, "path to migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load configuration", "error", err)
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatalw("failed to resolve migrations path", "error", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		log.Fatalw("failed to create migration driver", "error", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", absPath),
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalw("failed to create migrator", "error", err)
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalw("migration up failed", "error", err)
		}
		logVersion(log, m)

	case "down":
		if err := m.Steps(-1); err != nil && err != migrate.ErrNoChange {
			log.Fatalw("migration down failed", "error", err)
		}
		logVersion(log, m)

	case "step":
		if len(args) < 2 {
			log.Fatalw("step count required", "usage", "migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalw("invalid step count", "value", args[1])
		}
		if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
			log.Fatalw("migration step failed", "error", err)
		}
		logVersion(log, m)

	case "version":
		logVersion(log, m)

	case "force":
		if len(args) < 2 {
			log.Fatalw("version required", "usage", "migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalw("invalid version number", "value", args[1])
		}
		log.Warn("forcing migration version")
		if err := m.Force(version); err != nil {
			log.Fatalw("force version failed", "error", err)
		}

	default:
		log.Errorw("unknown command", "command", command)
		printUsage()
		os.Exit(1)
	}
}

func logVersion(log *logger.Logger, m *migrate.Migrate) {
	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		log.Info("no migrations applied")
		return
	}
	if err != nil {
		log.Fatalw("failed to get migration version", "error", err)
	}
	log.Infow("current migration version", "version", version, "dirty", dirty)
}

func printUsage() {
	fmt.Println(`Savdo Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up               Apply all pending migrations
  down             Roll back the last migration
  step <n>         Apply n migrations (positive=up, negative=down)
  version          Show current migration version
  force <version>  Force set migration version (use with caution)

Flags:
  -path string     Path to migrations directory (default: ./migrations)`)
}
