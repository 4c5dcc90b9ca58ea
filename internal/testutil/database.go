package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/KurhanTaha/DailyMealMenu/internal/database"
)

var menuTables = []string{"dishes", "daily_menus", "menu_templates"}

// NewTestDatabase returns a migrated menu database stored under t.TempDir, so
// every test gets its own file with the same journal mode and foreign keys as
// a deployment.
func NewTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "daily-menu.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	for _, table := range menuTables {
		var name string
		if err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name); err != nil {
			t.Fatalf("test database is missing table %s: %v", table, err)
		}
	}

	return db
}
