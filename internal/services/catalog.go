package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/blob"
	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/repository"
)

type CatalogService struct {
	catalogRepo repository.CatalogRepository
	transactor  repository.Transactor
	blobs       blob.Store
	now         func() time.Time
}

func NewCatalogService(catalogRepo repository.CatalogRepository, transactor repository.Transactor, blobs blob.Store) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		transactor:  transactor,
		blobs:       blobs,
		now:         time.Now,
	}
}

type DefinitionInput struct {
	Name        string
	Ingredients string
	Calories    int
	// IsActive defaults to true on create and to the stored value on update.
	IsActive *bool
	ImageRef *string
}

// ImageChange describes what an edit does to a definition's image. An upload
// wins over removal, and removal wins over a typed URL.
type ImageChange struct {
	UploadedRef string
	Remove      bool
	TypedURL    string
}

func (service *CatalogService) ListCatalog(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	category, err := parseCategory(category)
	if err != nil {
		return nil, err
	}

	items, err := service.catalogRepo.FindAll(ctx, category)
	if err != nil {
		return nil, translate(err, "listing catalog")
	}
	if items == nil {
		items = []models.CatalogItem{}
	}
	return items, nil
}

func (service *CatalogService) GetDefinition(ctx context.Context, category models.Category, id int64) (models.CatalogItem, error) {
	category, err := parseCategory(category)
	if err != nil {
		return models.CatalogItem{}, err
	}

	item, err := service.catalogRepo.FindDefinition(ctx, category, id)
	if err != nil {
		return models.CatalogItem{}, translate(err, "finding catalog definition")
	}
	return item, nil
}

func (service *CatalogService) CreateDefinition(ctx context.Context, category models.Category, input DefinitionInput) (models.CatalogItem, error) {
	category, err := parseCategory(category)
	if err != nil {
		return models.CatalogItem{}, err
	}
	if err := validateDefinition(input); err != nil {
		return models.CatalogItem{}, err
	}

	item := models.CatalogItem{
		Category:    category,
		Name:        strings.TrimSpace(input.Name),
		Ingredients: strings.TrimSpace(input.Ingredients),
		ImageRef:    nonBlank(input.ImageRef),
		Calories:    input.Calories,
		IsActive:    input.IsActive == nil || *input.IsActive,
		CreatedAt:   service.now(),
	}

	err = service.transactor.InTx(ctx, func(repos repository.Repositories) error {
		taken, err := repos.Catalog.NameTaken(ctx, category, models.NormalizeName(item.Name), 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		item, err = repos.Catalog.Create(ctx, item)
		return err
	})
	if err != nil {
		return models.CatalogItem{}, translate(err, "creating catalog definition")
	}

	slog.Info("created catalog definition", "id", item.ID, "category", item.Category, "name", item.Name)
	return item, nil
}

func (service *CatalogService) UpdateDefinition(ctx context.Context, category models.Category, id int64, input DefinitionInput, image ImageChange) (models.CatalogItem, error) {
	category, err := parseCategory(category)
	if err != nil {
		return models.CatalogItem{}, err
	}
	if err := validateDefinition(input); err != nil {
		return models.CatalogItem{}, err
	}

	var updated models.CatalogItem
	var replacedRef *string
	err = service.transactor.InTx(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Catalog.FindDefinition(ctx, category, id)
		if err != nil {
			return err
		}

		taken, err := repos.Catalog.NameTaken(ctx, category, models.NormalizeName(input.Name), id)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		updated = existing
		updated.Name = strings.TrimSpace(input.Name)
		updated.Ingredients = strings.TrimSpace(input.Ingredients)
		updated.Calories = input.Calories
		if input.IsActive != nil {
			updated.IsActive = *input.IsActive
		}

		switch {
		case image.UploadedRef != "":
			updated.ImageRef = &image.UploadedRef
			replacedRef = existing.ImageRef
		case image.Remove:
			updated.ImageRef = nil
			replacedRef = existing.ImageRef
		case category.ImagePolicy() == models.ImageApplyTypedURL:
			updated.ImageRef = nonBlank(&image.TypedURL)
		}

		return repos.Catalog.Update(ctx, updated)
	})
	if err != nil {
		// The upload stays in the store so the client can resubmit it.
		return models.CatalogItem{}, translate(err, "updating catalog definition")
	}

	if replacedRef != nil && (updated.ImageRef == nil || *replacedRef != *updated.ImageRef) {
		service.discardImage(ctx, replacedRef)
	}
	return updated, nil
}

func (service *CatalogService) DeleteDefinition(ctx context.Context, category models.Category, id int64) error {
	category, err := parseCategory(category)
	if err != nil {
		return err
	}

	var imageRef *string
	err = service.transactor.InTx(ctx, func(repos repository.Repositories) error {
		existing, err := repos.Catalog.FindDefinition(ctx, category, id)
		if err != nil {
			return err
		}
		imageRef = existing.ImageRef
		return repos.Catalog.Delete(ctx, category, id)
	})
	if err != nil {
		return translate(err, "deleting catalog definition")
	}

	service.discardImage(ctx, imageRef)
	slog.Info("deleted catalog definition", "id", id, "category", category)
	return nil
}

// ActiveSummaries lists active definitions for pick lists, one entry per
// normalized name (lowest id wins), ordered by name.
func (service *CatalogService) ActiveSummaries(ctx context.Context, category models.Category) ([]models.CatalogSummary, error) {
	category, err := parseCategory(category)
	if err != nil {
		return nil, err
	}

	items, err := service.catalogRepo.FindActive(ctx, category)
	if err != nil {
		return nil, translate(err, "listing active catalog definitions")
	}

	seen := make(map[string]bool, len(items))
	summaries := make([]models.CatalogSummary, 0, len(items))
	for _, item := range items {
		key := models.NormalizeName(item.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		summaries = append(summaries, models.CatalogSummary{ID: item.ID, Name: item.Name})
	}

	slices.SortStableFunc(summaries, func(a, b models.CatalogSummary) int {
		if order := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); order != 0 {
			return order
		}
		return int(a.ID - b.ID)
	})
	return summaries, nil
}

// discardImage removes a stored image once no definition or clone points at
// it. Failures are logged and dropped: the data change it follows has already
// committed.
func (service *CatalogService) discardImage(ctx context.Context, ref *string) {
	if service.blobs == nil || ref == nil || *ref == "" {
		return
	}

	inUse, err := service.catalogRepo.ImageInUse(ctx, *ref)
	if err != nil {
		slog.Warn("checking image references", "ref", *ref, "error", err)
		return
	}
	if inUse {
		slog.Debug("keeping shared image", "ref", *ref)
		return
	}

	if err := service.blobs.Delete(ctx, *ref); err != nil {
		slog.Warn("discarding image", "ref", *ref, "error", err)
	}
}

func validateDefinition(input DefinitionInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationError("name is required")
	}
	if input.Calories < 0 {
		return validationError("calories cannot be negative")
	}
	return nil
}

func nonBlank(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
