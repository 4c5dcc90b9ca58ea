package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDateTaken = errors.New("date already has a menu")
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Catalog    CatalogRepository
	DailyMenus DailyMenuRepository
	Templates  TemplateRepository
}

type Transactor interface {
	// InTx commits when fn returns nil and rolls back otherwise. fn must only
	// use the repositories it is handed.
	InTx(ctx context.Context, fn func(repos Repositories) error) error
}

type SQLiteTransactor struct {
	database *sql.DB
}

func NewTransactor(database *sql.DB) *SQLiteTransactor {
	return &SQLiteTransactor{database: database}
}

func (transactor *SQLiteTransactor) InTx(ctx context.Context, fn func(repos Repositories) error) error {
	transaction, err := transactor.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	repos := Repositories{
		Catalog:    &SQLiteCatalogRepository{database: transaction},
		DailyMenus: &SQLiteDailyMenuRepository{database: transaction},
		Templates:  &SQLiteTemplateRepository{database: transaction},
	}
	if err := fn(repos); err != nil {
		return err
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func notFoundOr(err error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// storedTime is the form timestamps are written in. Timestamps are stored as
// text and ordered as text, so they must share one offset.
func storedTime(value time.Time) time.Time {
	if value.IsZero() {
		value = time.Now()
	}
	return value.UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}
