package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/GoArmGo/WorkoutTracker/internal/database/migrations"
)

// MigrateUp applies every pending migration.
func (c *Client) MigrateUp() error {
	return c.migrate("up", func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back every applied migration.
func (c *Client) MigrateDown() error {
	return c.migrate("down", func(m *migrate.Migrate) error { return m.Down() })
}

func (c *Client) migrate(direction string, run func(*migrate.Migrate) error) error {
	start := time.Now()

	m, err := c.newMigrator()
	if err != nil {
		return err
	}
	// m.Close would close the shared pool, so it is never called.

	err = run(m)
	if errors.Is(err, migrate.ErrNoChange) {
		c.logger.Info("no migrations to apply", "direction", direction)
		return nil
	}
	if err != nil {
		c.logger.Error("migration failed", "direction", direction, "error", err)
		return fmt.Errorf("run migrations %s: %w", direction, err)
	}

	version, dirty, _ := m.Version()
	c.logger.Info("migrations applied",
		"direction", direction,
		"version", version,
		"dirty", dirty,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (c *Client) newMigrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, c.Driver)
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	var driver database.Driver
	switch c.Driver {
	case DriverPostgres:
		driver, err = migratepg.WithInstance(c.DB.DB, &migratepg.Config{})
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(c.DB.DB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, c.Driver, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
