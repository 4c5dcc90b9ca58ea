package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/repository"
)

// MissingPolicy decides what happens when a selection no longer resolves to a
// catalog definition.
type MissingPolicy int

const (
	// MissingSkip drops the selection and carries on.
	MissingSkip MissingPolicy = iota
	// MissingFail aborts the whole assignment.
	MissingFail
)

type AssignOptions struct {
	Missing MissingPolicy
	// RequireFullMenu demands exactly MaxMenuItems selections.
	RequireFullMenu bool
}

type Selection struct {
	Category  models.Category `json:"category"`
	CatalogID int64           `json:"catalogId"`
}

type AssignmentService struct {
	menuRepo   repository.DailyMenuRepository
	transactor repository.Transactor
	now        func() time.Time
}

func NewAssignmentService(menuRepo repository.DailyMenuRepository, transactor repository.Transactor) *AssignmentService {
	return &AssignmentService{
		menuRepo:   menuRepo,
		transactor: transactor,
		now:        time.Now,
	}
}

// AssignMenu creates the menu for date and clones every selected definition
// into it. The menu row and its clones commit together or not at all.
func (service *AssignmentService) AssignMenu(ctx context.Context, date string, selections []Selection, options AssignOptions) (models.DailyMenu, error) {
	date, err := ParseDate(date)
	if err != nil {
		return models.DailyMenu{}, err
	}
	if len(selections) == 0 {
		return models.DailyMenu{}, validationError("select at least one dish")
	}
	if len(selections) > models.MaxMenuItems {
		return models.DailyMenu{}, validationError("select at most %d dishes", models.MaxMenuItems)
	}
	if options.RequireFullMenu && len(selections) != models.MaxMenuItems {
		return models.DailyMenu{}, validationError("select exactly %d dishes", models.MaxMenuItems)
	}

	ordered, err := orderSelections(selections, options.Missing)
	if err != nil {
		return models.DailyMenu{}, err
	}

	var menu models.DailyMenu
	err = service.transactor.InTx(ctx, func(repos repository.Repositories) error {
		taken, err := repos.DailyMenus.ExistsForDate(ctx, date)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateAssignment
		}

		menu, err = repos.DailyMenus.Create(ctx, date)
		if err != nil {
			return err
		}

		now := service.now()
		menu.Items = []models.DayBoundClone{}
		for _, selection := range ordered {
			source, err := repos.Catalog.FindDefinition(ctx, selection.Category, selection.CatalogID)
			if err != nil {
				if !isNotFound(err) {
					return err
				}
				if options.Missing == MissingFail {
					return fmt.Errorf("%s %d: %w", selection.Category, selection.CatalogID, ErrNotFound)
				}
				slog.Debug("skipping missing selection", "date", date, "category", selection.Category, "catalog_id", selection.CatalogID)
				continue
			}

			clone, err := repos.DailyMenus.AddClone(ctx, source.CloneFor(menu.ID, now))
			if err != nil {
				return err
			}
			menu.Items = append(menu.Items, clone)
		}
		return nil
	})
	if err != nil {
		return models.DailyMenu{}, translate(err, "assigning menu")
	}

	slog.Info("assigned daily menu", "id", menu.ID, "date", menu.Date, "items", len(menu.Items))
	return menu, nil
}

// DeleteDailyMenu removes the menu and every clone bound to it. Catalog
// definitions are untouched.
func (service *AssignmentService) DeleteDailyMenu(ctx context.Context, id int64) error {
	err := service.transactor.InTx(ctx, func(repos repository.Repositories) error {
		return repos.DailyMenus.Delete(ctx, id)
	})
	if err != nil {
		return translate(err, "deleting daily menu")
	}

	slog.Info("deleted daily menu", "id", id)
	return nil
}

func (service *AssignmentService) GetByDate(ctx context.Context, date string) (models.DailyMenu, error) {
	date, err := ParseDate(date)
	if err != nil {
		return models.DailyMenu{}, err
	}

	menu, err := service.menuRepo.FindByDate(ctx, date)
	if err != nil {
		return models.DailyMenu{}, translate(err, "finding daily menu by date")
	}
	return withItems(menu), nil
}

func (service *AssignmentService) GetByID(ctx context.Context, id int64) (models.DailyMenu, error) {
	menu, err := service.menuRepo.FindByID(ctx, id)
	if err != nil {
		return models.DailyMenu{}, translate(err, "finding daily menu")
	}
	return withItems(menu), nil
}

// List summarizes every menu, newest date first.
func (service *AssignmentService) List(ctx context.Context) ([]models.DailyMenuSummary, error) {
	menus, err := service.menuRepo.FindAll(ctx)
	if err != nil {
		return nil, translate(err, "listing daily menus")
	}

	summaries := make([]models.DailyMenuSummary, 0, len(menus))
	for _, menu := range menus {
		summaries = append(summaries, Summarize(menu))
	}
	return summaries, nil
}

// Summarize counts and names the clones of a menu per category.
func Summarize(menu models.DailyMenu) models.DailyMenuSummary {
	summary := models.DailyMenuSummary{
		ID:     menu.ID,
		Date:   menu.Date,
		Names:  make(map[models.Category][]string, len(models.Categories)),
		Counts: make(map[models.Category]int, len(models.Categories)),
	}
	for _, category := range models.Categories {
		names := []string{}
		for _, item := range menu.ItemsIn(category) {
			names = append(names, item.Name)
		}
		summary.Names[category] = names
		summary.Counts[category] = len(names)
		summary.Total += len(names)
	}
	return summary
}

// orderSelections drops duplicate (category, id) pairs and sorts what is left
// into menu order, keeping submission order within a category.
func orderSelections(selections []Selection, missing MissingPolicy) ([]Selection, error) {
	type selectionKey struct {
		category models.Category
		id       int64
	}

	seen := make(map[selectionKey]bool, len(selections))
	ordered := make([]Selection, 0, len(selections))
	for _, selection := range selections {
		category, ok := models.ParseCategory(string(selection.Category))
		if !ok {
			if missing == MissingFail {
				return nil, validationError("unknown category %q", selection.Category)
			}
			slog.Debug("skipping selection with unknown category", "category", selection.Category)
			continue
		}
		selection.Category = category

		key := selectionKey{category: category, id: selection.CatalogID}
		if seen[key] {
			continue
		}
		seen[key] = true
		ordered = append(ordered, selection)
	}

	slices.SortStableFunc(ordered, func(a, b Selection) int {
		rankA, _ := a.Category.Rank()
		rankB, _ := b.Category.Rank()
		return rankA - rankB
	})
	return ordered, nil
}

func withItems(menu models.DailyMenu) models.DailyMenu {
	if menu.Items == nil {
		menu.Items = []models.DayBoundClone{}
	}
	return menu
}
