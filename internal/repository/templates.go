package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
)

type TemplateRepository interface {
	FindByID(ctx context.Context, id int64) (models.MenuTemplate, error)
	FindAll(ctx context.Context) ([]models.MenuTemplate, error)
	Create(ctx context.Context, template models.MenuTemplate) (models.MenuTemplate, error)
	Delete(ctx context.Context, id int64) error
}

type SQLiteTemplateRepository struct {
	database DBTX
}

func NewTemplateRepository(database *sql.DB) *SQLiteTemplateRepository {
	return &SQLiteTemplateRepository{database: database}
}

func (repository *SQLiteTemplateRepository) FindByID(ctx context.Context, id int64) (models.MenuTemplate, error) {
	var template models.MenuTemplate
	var itemsJSON string
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, title, items_json, created_at FROM menu_templates WHERE id = ?", id,
	).Scan(&template.ID, &template.Title, &itemsJSON, &template.CreatedAt)
	if err != nil {
		return models.MenuTemplate{}, notFoundOr(err, "finding menu template")
	}
	template.Items = decodeTemplateItems(template.ID, itemsJSON)
	return template, nil
}

func (repository *SQLiteTemplateRepository) FindAll(ctx context.Context) ([]models.MenuTemplate, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, title, items_json, created_at FROM menu_templates ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("finding menu templates: %w", err)
	}
	defer rows.Close()

	var templates []models.MenuTemplate
	for rows.Next() {
		var template models.MenuTemplate
		var itemsJSON string
		if err := rows.Scan(&template.ID, &template.Title, &itemsJSON, &template.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning menu template: %w", err)
		}
		template.Items = decodeTemplateItems(template.ID, itemsJSON)
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

func (repository *SQLiteTemplateRepository) Create(ctx context.Context, template models.MenuTemplate) (models.MenuTemplate, error) {
	template.CreatedAt = storedTime(template.CreatedAt)
	if template.Items == nil {
		template.Items = []models.TemplateItem{}
	}

	itemsJSON, err := json.Marshal(template.Items)
	if err != nil {
		return models.MenuTemplate{}, fmt.Errorf("marshalling template items: %w", err)
	}

	result, err := repository.database.ExecContext(ctx,
		"INSERT INTO menu_templates (title, items_json, created_at) VALUES (?, ?, ?)",
		template.Title, string(itemsJSON), template.CreatedAt,
	)
	if err != nil {
		return models.MenuTemplate{}, fmt.Errorf("creating menu template: %w", err)
	}

	template.ID, err = result.LastInsertId()
	if err != nil {
		return models.MenuTemplate{}, fmt.Errorf("reading menu template id: %w", err)
	}
	return template, nil
}

func (repository *SQLiteTemplateRepository) Delete(ctx context.Context, id int64) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM menu_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting menu template: %w", err)
	}
	return nil
}

// decodeTemplateItems never fails: a damaged row reads as an empty template.
func decodeTemplateItems(id int64, itemsJSON string) []models.TemplateItem {
	var items []models.TemplateItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		slog.Warn("reading menu template items", "template_id", id, "error", err)
		return []models.TemplateItem{}
	}
	if items == nil {
		return []models.TemplateItem{}
	}
	return items
}
