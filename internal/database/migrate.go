package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// source driver
	"github.com/jmoiron/sqlx"

	"github.com/phishguard/phishguard/internal/logger"
)

// RunMigrations applies all pending schema migrations from the
// migrations directory. Only the postgres driver is migrated;
// sqlite development databases are created from the same SQL by hand.
func RunMigrations(db *sqlx.DB, migrationsPath string, log logger.Logger) error {
	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migrate driver: %w", err)
	}

	if abs, absErr := filepath.Abs(migrationsPath); absErr == nil {
		migrationsPath = abs
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no pending migrations", logger.String("path", migrationsPath))
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info("migrations applied", logger.String("path", migrationsPath))
	return nil
}
