// Package testutil provides a migrated SQLite database for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/GoArmGo/WorkoutTracker/internal/database/client"
	"github.com/GoArmGo/WorkoutTracker/internal/logger"
)

// SetupTestDB opens a fresh SQLite file under t.TempDir and applies the
// production migrations. The connection is closed when the test ends.
func SetupTestDB(t *testing.T) *client.Client {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workouts.db")
	c, err := client.Open(client.DriverSQLite, path, logger.Discard())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := c.MigrateUp(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return c
}
