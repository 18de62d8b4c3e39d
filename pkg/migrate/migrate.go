package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/angelmondragon/counterpos/pkg/config"
	"github.com/pressly/goose/v3"
)

// DefaultDir is where cmd/migrate creates and validates migration files on disk.
const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Dialect maps the configured SQL driver to the goose dialect name.
func Dialect(driver string) string {
	if driver == config.DBDriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

func prepare(driver string) error {
	goose.SetBaseFS(embedded)
	if err := goose.SetDialect(Dialect(driver)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Run executes a standard goose command against the embedded migrations.
func Run(ctx context.Context, db *sql.DB, driver string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := prepare(driver); err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, embeddedDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	if err := prepare(driver); err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if err := goose.UpToContext(ctx, db, embeddedDir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if err := goose.DownToContext(ctx, db, embeddedDir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
