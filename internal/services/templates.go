package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/repository"
)

const templateTitleLayout = "02.01.2006"

type TemplateService struct {
	templateRepo repository.TemplateRepository
	transactor   repository.Transactor
	now          func() time.Time
}

func NewTemplateService(templateRepo repository.TemplateRepository, transactor repository.Transactor) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		transactor:   transactor,
		now:          time.Now,
	}
}

// Capture snapshots up to MaxMenuItems dishes of a daily menu, walking the
// categories in menu order. Each dish is linked back to the lowest-id catalog
// definition with the same category and name, if one still exists.
func (service *TemplateService) Capture(ctx context.Context, dailyMenuID int64, title *string) (models.MenuTemplate, error) {
	var template models.MenuTemplate
	err := service.transactor.InTx(ctx, func(repos repository.Repositories) error {
		menu, err := repos.DailyMenus.FindByID(ctx, dailyMenuID)
		if err != nil {
			return err
		}

		items := make([]models.TemplateItem, 0, models.MaxMenuItems)
	categories:
		for _, category := range models.Categories {
			for _, clone := range menu.ItemsIn(category) {
				if len(items) == models.MaxMenuItems {
					break categories
				}

				item := models.TemplateItem{Category: category, Name: clone.Name}
				matches, err := repos.Catalog.FindByNameKey(ctx, category, models.NormalizeName(clone.Name))
				if err != nil {
					return err
				}
				if len(matches) > 0 {
					item.CatalogID = &matches[0].ID
				}
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return ErrEmptySource
		}

		template, err = repos.Templates.Create(ctx, models.MenuTemplate{
			Title:     templateTitle(title, menu.Date),
			CreatedAt: service.now(),
			Items:     items,
		})
		return err
	})
	if err != nil {
		return models.MenuTemplate{}, translate(err, "capturing menu template")
	}

	slog.Info("captured menu template", "id", template.ID, "daily_menu_id", dailyMenuID, "items", len(template.Items))
	return template, nil
}

func (service *TemplateService) List(ctx context.Context) ([]models.MenuTemplate, error) {
	templates, err := service.templateRepo.FindAll(ctx)
	if err != nil {
		return nil, translate(err, "listing menu templates")
	}
	if templates == nil {
		templates = []models.MenuTemplate{}
	}
	return templates, nil
}

func (service *TemplateService) Get(ctx context.Context, id int64) (models.MenuTemplate, error) {
	template, err := service.templateRepo.FindByID(ctx, id)
	if err != nil {
		return models.MenuTemplate{}, translate(err, "finding menu template")
	}
	return template, nil
}

func (service *TemplateService) Items(ctx context.Context, id int64) ([]models.TemplateItem, error) {
	template, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return template.Items, nil
}

// Delete succeeds whether or not the template exists.
func (service *TemplateService) Delete(ctx context.Context, id int64) error {
	if err := service.templateRepo.Delete(ctx, id); err != nil {
		return translate(err, "deleting menu template")
	}
	return nil
}

// Selections turns the linked items of a template into assignment input.
// Unlinked items are left out.
func Selections(template models.MenuTemplate) []Selection {
	selections := make([]Selection, 0, len(template.Items))
	for _, item := range template.Items {
		if item.CatalogID == nil {
			continue
		}
		selections = append(selections, Selection{Category: item.Category, CatalogID: *item.CatalogID})
	}
	return selections
}

func templateTitle(title *string, date string) *string {
	if title != nil && strings.TrimSpace(*title) != "" {
		trimmed := strings.TrimSpace(*title)
		return &trimmed
	}

	parsed, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil
	}
	generated := parsed.Format(templateTitleLayout) + " menu"
	return &generated
}
