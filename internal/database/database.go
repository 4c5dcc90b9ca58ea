package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func Open(databasePath string) (*sql.DB, error) {
	directory := filepath.Dir(databasePath)
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	database, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Pragmas are per connection and ":memory:" is per connection too.
	database.SetMaxOpenConns(1)

	pragmas := []struct {
		statement string
		purpose   string
	}{
		{"PRAGMA journal_mode=WAL", "setting WAL mode"},
		{"PRAGMA foreign_keys=ON", "enabling foreign keys"},
		{"PRAGMA busy_timeout=5000", "setting busy timeout"},
	}
	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma.statement); err != nil {
			database.Close()
			return nil, fmt.Errorf("%s: %w", pragma.purpose, err)
		}
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return database, nil
}
