package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"sync"

	"shipment-tracker/internal/core/logger"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap/zapcore"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dir = "migrations"

// goose keeps its dialect, base FS and logger in package globals.
var mu sync.Mutex

// dialectFor maps a database driver name to the goose dialect.
func dialectFor(driver string) (string, error) {
	switch driver {
	case "postgres", "":
		return "postgres", nil
	case "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("no migration dialect for driver %q", driver)
	}
}

func prepare(driver string) error {
	dialect, err := dialectFor(driver)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations)
	goose.SetLogger(logger.StdLog("goose", zapcore.InfoLevel))
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	return run(ctx, db, driver, "up")
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, driver string) error {
	return run(ctx, db, driver, "down")
}

// Status logs the applied state of every migration.
func Status(ctx context.Context, db *sql.DB, driver string) error {
	return run(ctx, db, driver, "status")
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	if db == nil {
		return 0, fmt.Errorf("db is required")
	}
	mu.Lock()
	defer mu.Unlock()

	if err := prepare(driver); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("get db version: %w", err)
	}
	return v, nil
}

// To migrates up or down to the requested version.
func To(ctx context.Context, db *sql.DB, driver string, targetVersion string) error {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := Version(ctx, db, driver)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if err := prepare(driver); err != nil {
		return err
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

func run(ctx context.Context, db *sql.DB, driver string, command string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	mu.Lock()
	defer mu.Unlock()

	if err := prepare(driver); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
