package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
)

// InsertDish writes a catalog row directly, bypassing the uniqueness check, so
// tests can reproduce historical duplicates.
func InsertDish(t *testing.T, db *sql.DB, category models.Category, name string, active bool) int64 {
	t.Helper()

	result, err := db.ExecContext(context.Background(),
		`INSERT INTO dishes (category, name, name_key, ingredients, calories, is_active, created_at)
		VALUES (?, ?, ?, '', 0, ?, ?)`,
		category, name, models.NormalizeName(name), active, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("inserting dish %q: %v", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("reading dish id: %v", err)
	}
	return id
}

func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return count
}

// CountClones counts dishes bound to any daily menu.
func CountClones(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM dishes WHERE daily_menu_id IS NOT NULL").Scan(&count); err != nil {
		t.Fatalf("counting clones: %v", err)
	}
	return count
}
