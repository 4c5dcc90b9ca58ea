package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
)

const categoryOrder = `CASE category
	WHEN 'soups' THEN 1 WHEN 'mainDishes' THEN 2 WHEN 'desserts' THEN 3
	WHEN 'salads' THEN 4 WHEN 'starters' THEN 5 WHEN 'others' THEN 6 END`

type DailyMenuRepository interface {
	FindByID(ctx context.Context, id int64) (models.DailyMenu, error)
	FindByDate(ctx context.Context, date string) (models.DailyMenu, error)
	ExistsForDate(ctx context.Context, date string) (bool, error)
	FindAll(ctx context.Context) ([]models.DailyMenu, error)
	Create(ctx context.Context, date string) (models.DailyMenu, error)
	AddClone(ctx context.Context, clone models.DayBoundClone) (models.DayBoundClone, error)
	Delete(ctx context.Context, id int64) error
}

type SQLiteDailyMenuRepository struct {
	database DBTX
}

func NewDailyMenuRepository(database *sql.DB) *SQLiteDailyMenuRepository {
	return &SQLiteDailyMenuRepository{database: database}
}

func (repository *SQLiteDailyMenuRepository) FindByID(ctx context.Context, id int64) (models.DailyMenu, error) {
	return repository.findOne(ctx, "SELECT id, date, created_at FROM daily_menus WHERE id = ?", id)
}

func (repository *SQLiteDailyMenuRepository) FindByDate(ctx context.Context, date string) (models.DailyMenu, error) {
	return repository.findOne(ctx, "SELECT id, date, created_at FROM daily_menus WHERE date = ?", date)
}

func (repository *SQLiteDailyMenuRepository) ExistsForDate(ctx context.Context, date string) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM daily_menus WHERE date = ?", date,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking daily menu date: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteDailyMenuRepository) FindAll(ctx context.Context) ([]models.DailyMenu, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, date, created_at FROM daily_menus ORDER BY date DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("finding daily menus: %w", err)
	}
	defer rows.Close()

	var menus []models.DailyMenu
	for rows.Next() {
		var menu models.DailyMenu
		if err := rows.Scan(&menu.ID, &menu.Date, &menu.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning daily menu: %w", err)
		}
		menus = append(menus, menu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily menus: %w", err)
	}
	if len(menus) == 0 {
		return menus, nil
	}

	clones, err := repository.findClones(ctx, "daily_menu_id IS NOT NULL")
	if err != nil {
		return nil, err
	}
	for i := range menus {
		menus[i].Items = clones[menus[i].ID]
	}
	return menus, nil
}

func (repository *SQLiteDailyMenuRepository) Create(ctx context.Context, date string) (models.DailyMenu, error) {
	menu := models.DailyMenu{Date: date, CreatedAt: storedTime(time.Time{})}

	result, err := repository.database.ExecContext(ctx,
		"INSERT INTO daily_menus (date, created_at) VALUES (?, ?)", menu.Date, menu.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.DailyMenu{}, fmt.Errorf("creating daily menu: %w", ErrDateTaken)
		}
		return models.DailyMenu{}, fmt.Errorf("creating daily menu: %w", err)
	}

	menu.ID, err = result.LastInsertId()
	if err != nil {
		return models.DailyMenu{}, fmt.Errorf("reading daily menu id: %w", err)
	}
	return menu, nil
}

func (repository *SQLiteDailyMenuRepository) AddClone(ctx context.Context, clone models.DayBoundClone) (models.DayBoundClone, error) {
	if clone.DailyMenuID == 0 {
		return models.DayBoundClone{}, fmt.Errorf("adding clone %q: missing daily menu id", clone.Name)
	}

	clone.CreatedAt = storedTime(clone.CreatedAt)
	result, err := repository.database.ExecContext(ctx,
		`INSERT INTO dishes (category, name, name_key, ingredients, image_ref, calories, is_active, created_at, daily_menu_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clone.Category, clone.Name, models.NormalizeName(clone.Name), clone.Ingredients,
		clone.ImageRef, clone.Calories, clone.IsActive, clone.CreatedAt, clone.DailyMenuID,
	)
	if err != nil {
		return models.DayBoundClone{}, fmt.Errorf("adding clone: %w", err)
	}

	clone.ID, err = result.LastInsertId()
	if err != nil {
		return models.DayBoundClone{}, fmt.Errorf("reading clone id: %w", err)
	}
	return clone, nil
}

// Delete removes the menu's clones before the menu row; callers wrap it in a
// transaction so neither survives alone.
func (repository *SQLiteDailyMenuRepository) Delete(ctx context.Context, id int64) error {
	if _, err := repository.database.ExecContext(ctx,
		"DELETE FROM dishes WHERE daily_menu_id = ?", id,
	); err != nil {
		return fmt.Errorf("deleting daily menu clones: %w", err)
	}

	result, err := repository.database.ExecContext(ctx, "DELETE FROM daily_menus WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting daily menu: %w", err)
	}
	return requireAffected(result, "deleting daily menu")
}

func (repository *SQLiteDailyMenuRepository) findOne(ctx context.Context, query string, arg any) (models.DailyMenu, error) {
	var menu models.DailyMenu
	err := repository.database.QueryRowContext(ctx, query, arg).Scan(&menu.ID, &menu.Date, &menu.CreatedAt)
	if err != nil {
		return models.DailyMenu{}, notFoundOr(err, "finding daily menu")
	}

	clones, err := repository.findClones(ctx, "daily_menu_id = ?", menu.ID)
	if err != nil {
		return models.DailyMenu{}, err
	}
	menu.Items = clones[menu.ID]
	return menu, nil
}

func (repository *SQLiteDailyMenuRepository) findClones(ctx context.Context, condition string, args ...any) (map[int64][]models.DayBoundClone, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+dishColumns+`, daily_menu_id FROM dishes
		WHERE `+condition+`
		ORDER BY `+categoryOrder+`, id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("finding clones: %w", err)
	}
	defer rows.Close()

	clones := make(map[int64][]models.DayBoundClone)
	for rows.Next() {
		var clone models.DayBoundClone
		if err := rows.Scan(
			&clone.ID, &clone.Category, &clone.Name, &clone.Ingredients,
			&clone.ImageRef, &clone.Calories, &clone.IsActive, &clone.CreatedAt,
			&clone.DailyMenuID,
		); err != nil {
			return nil, fmt.Errorf("scanning clone: %w", err)
		}
		clones[clone.DailyMenuID] = append(clones[clone.DailyMenuID], clone)
	}
	return clones, rows.Err()
}
