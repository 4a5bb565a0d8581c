package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// migrations loader
	"go.uber.org/zap"
)

// ApplyMigrations runs the schema migrations under dir against db.
func ApplyMigrations(db *sql.DB, dir string, logger *zap.Logger) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return fmt.Errorf("initialising migrate driver: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving migrations dir: %w", err)
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+slashed, "mysql", driver)
	if err != nil {
		return fmt.Errorf("initialising migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("database schema up-to-date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	logger.Info("database migrations applied", zap.String("dir", abs))
	return nil
}
