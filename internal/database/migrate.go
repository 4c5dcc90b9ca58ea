package database

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	filename string
}

// Migrate applies every embedded *.up.sql file that is not yet recorded in
// schema_migrations, in version order, each in its own transaction.
func Migrate(database *sql.DB) error {
	if _, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			filename TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	pending, err := pendingMigrations(database)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		slog.Debug("database schema up to date")
		return nil
	}

	for _, next := range pending {
		if err := apply(database, next); err != nil {
			return err
		}
		slog.Info("applied migration", "version", next.version, "file", next.filename)
	}
	return nil
}

func pendingMigrations(database *sql.DB) ([]migration, error) {
	available, err := embeddedMigrations()
	if err != nil {
		return nil, err
	}

	rows, err := database.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning applied migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applied migrations: %w", err)
	}

	var pending []migration
	for _, candidate := range available {
		if !applied[candidate.version] {
			pending = append(pending, candidate)
		}
	}
	return pending, nil
}

func embeddedMigrations() ([]migration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return nil, fmt.Errorf("parsing migration version from %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, migration{version: version, filename: entry.Name()})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

func apply(database *sql.DB, next migration) error {
	content, err := migrationsFS.ReadFile("migrations/" + next.filename)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", next.filename, err)
	}

	transaction, err := database.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %d: %w", next.version, err)
	}
	defer transaction.Rollback()

	if _, err := transaction.Exec(string(content)); err != nil {
		return fmt.Errorf("executing migration %s: %w", next.filename, err)
	}
	if _, err := transaction.Exec(
		"INSERT INTO schema_migrations (version, filename) VALUES (?, ?)", next.version, next.filename,
	); err != nil {
		return fmt.Errorf("recording migration %d: %w", next.version, err)
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", next.version, err)
	}
	return nil
}
