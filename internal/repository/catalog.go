package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
)

const dishColumns = "id, category, name, ingredients, image_ref, calories, is_active, created_at"

// CatalogRepository only ever sees catalog definitions; day-bound clones are
// reached through DailyMenuRepository.
type CatalogRepository interface {
	FindDefinition(ctx context.Context, category models.Category, id int64) (models.CatalogItem, error)
	FindAll(ctx context.Context, category models.Category) ([]models.CatalogItem, error)
	FindActive(ctx context.Context, category models.Category) ([]models.CatalogItem, error)
	FindByNameKey(ctx context.Context, category models.Category, nameKey string) ([]models.CatalogItem, error)
	NameTaken(ctx context.Context, category models.Category, nameKey string, excludeID int64) (bool, error)
	// ImageInUse reports whether any dish row, definition or clone, still
	// points at ref.
	ImageInUse(ctx context.Context, ref string) (bool, error)
	Create(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error)
	Update(ctx context.Context, item models.CatalogItem) error
	Delete(ctx context.Context, category models.Category, id int64) error
}

type SQLiteCatalogRepository struct {
	database DBTX
}

func NewCatalogRepository(database *sql.DB) *SQLiteCatalogRepository {
	return &SQLiteCatalogRepository{database: database}
}

func (repository *SQLiteCatalogRepository) FindDefinition(ctx context.Context, category models.Category, id int64) (models.CatalogItem, error) {
	item, err := scanCatalogItem(repository.database.QueryRowContext(ctx,
		`SELECT `+dishColumns+` FROM dishes
		WHERE id = ? AND category = ? AND daily_menu_id IS NULL`, id, category,
	))
	if err != nil {
		return models.CatalogItem{}, notFoundOr(err, "finding catalog definition")
	}
	return item, nil
}

func (repository *SQLiteCatalogRepository) FindAll(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	return repository.query(ctx, "finding catalog definitions",
		`SELECT `+dishColumns+` FROM dishes
		WHERE category = ? AND daily_menu_id IS NULL
		ORDER BY name COLLATE NOCASE ASC, id ASC`, category,
	)
}

func (repository *SQLiteCatalogRepository) FindActive(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	return repository.query(ctx, "finding active catalog definitions",
		`SELECT `+dishColumns+` FROM dishes
		WHERE category = ? AND daily_menu_id IS NULL AND is_active = 1
		ORDER BY id ASC`, category,
	)
}

func (repository *SQLiteCatalogRepository) FindByNameKey(ctx context.Context, category models.Category, nameKey string) ([]models.CatalogItem, error) {
	return repository.query(ctx, "finding catalog definitions by name",
		`SELECT `+dishColumns+` FROM dishes
		WHERE category = ? AND name_key = ? AND daily_menu_id IS NULL
		ORDER BY id ASC`, category, nameKey,
	)
}

func (repository *SQLiteCatalogRepository) NameTaken(ctx context.Context, category models.Category, nameKey string, excludeID int64) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dishes
		WHERE category = ? AND name_key = ? AND daily_menu_id IS NULL AND id != ?`,
		category, nameKey, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking catalog name: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteCatalogRepository) ImageInUse(ctx context.Context, ref string) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dishes WHERE image_ref = ?", ref,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking image references: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteCatalogRepository) Create(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	item.CreatedAt = storedTime(item.CreatedAt)

	result, err := repository.database.ExecContext(ctx,
		`INSERT INTO dishes (category, name, name_key, ingredients, image_ref, calories, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Category, item.Name, models.NormalizeName(item.Name), item.Ingredients,
		item.ImageRef, item.Calories, item.IsActive, item.CreatedAt,
	)
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("creating catalog definition: %w", err)
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		return models.CatalogItem{}, fmt.Errorf("reading catalog definition id: %w", err)
	}
	return item, nil
}

func (repository *SQLiteCatalogRepository) Update(ctx context.Context, item models.CatalogItem) error {
	result, err := repository.database.ExecContext(ctx,
		`UPDATE dishes SET name = ?, name_key = ?, ingredients = ?, image_ref = ?, calories = ?, is_active = ?
		WHERE id = ? AND category = ? AND daily_menu_id IS NULL`,
		item.Name, models.NormalizeName(item.Name), item.Ingredients, item.ImageRef,
		item.Calories, item.IsActive, item.ID, item.Category,
	)
	if err != nil {
		return fmt.Errorf("updating catalog definition: %w", err)
	}
	return requireAffected(result, "updating catalog definition")
}

func (repository *SQLiteCatalogRepository) Delete(ctx context.Context, category models.Category, id int64) error {
	result, err := repository.database.ExecContext(ctx,
		"DELETE FROM dishes WHERE id = ? AND category = ? AND daily_menu_id IS NULL", id, category,
	)
	if err != nil {
		return fmt.Errorf("deleting catalog definition: %w", err)
	}
	return requireAffected(result, "deleting catalog definition")
}

func (repository *SQLiteCatalogRepository) query(ctx context.Context, action string, query string, args ...any) ([]models.CatalogItem, error) {
	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer rows.Close()

	var items []models.CatalogItem
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog definition: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanCatalogItem(scanner rowScanner) (models.CatalogItem, error) {
	var item models.CatalogItem
	err := scanner.Scan(
		&item.ID, &item.Category, &item.Name, &item.Ingredients,
		&item.ImageRef, &item.Calories, &item.IsActive, &item.CreatedAt,
	)
	return item, err
}

func requireAffected(result sql.Result, action string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	return nil
}
