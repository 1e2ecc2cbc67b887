package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Tables owned by the migrations, dropped by the destructive fallback.
var managedTables = []string{"tasks", "daily_profits", "expenses", "schema_migrations"}

// RunMigrations brings the schema up to date. Migrations only ever add
// tables; if applying them fails the schema is dropped and rebuilt from
// scratch, losing all stored records.
func RunMigrations(dbPath string) error {
	err := migrateUp(dbPath)
	if err == nil {
		return nil
	}

	slog.Warn("Migration failed, rebuilding schema destructively", "path", dbPath, "error", err)
	if resetErr := resetSchema(dbPath); resetErr != nil {
		return errors.Join(err, fmt.Errorf("reset schema: %w", resetErr))
	}
	if err := migrateUp(dbPath); err != nil {
		return fmt.Errorf("run migrations after reset: %w", err)
	}
	return nil
}

func migrateUp(dbPath string) error {
	// Create a separate connection for migrations to avoid interfering with the main connection
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func resetSchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, table := range managedTables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}
