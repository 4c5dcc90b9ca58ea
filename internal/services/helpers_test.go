package services_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/repository"
	"github.com/KurhanTaha/DailyMealMenu/internal/services"
	"github.com/KurhanTaha/DailyMealMenu/internal/testutil"
)

type testServices struct {
	db         *sql.DB
	catalog    *services.CatalogService
	assignment *services.AssignmentService
	templates  *services.TemplateService
	blobs      *recordingBlobStore
}

func newTestServices(t *testing.T) testServices {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	transactor := repository.NewTransactor(db)
	blobs := &recordingBlobStore{}

	return testServices{
		db:         db,
		catalog:    services.NewCatalogService(repository.NewCatalogRepository(db), transactor, blobs),
		assignment: services.NewAssignmentService(repository.NewDailyMenuRepository(db), transactor),
		templates:  services.NewTemplateService(repository.NewTemplateRepository(db), transactor),
		blobs:      blobs,
	}
}

func (ts testServices) define(t *testing.T, category models.Category, name string) models.CatalogItem {
	t.Helper()
	item, err := ts.catalog.CreateDefinition(context.Background(), category, services.DefinitionInput{
		Name:        name,
		Ingredients: "water, salt",
		Calories:    150,
	})
	if err != nil {
		t.Fatalf("creating definition %q: %v", name, err)
	}
	return item
}

func (ts testServices) defineWithImage(t *testing.T, category models.Category, name, imageRef string) models.CatalogItem {
	t.Helper()
	item, err := ts.catalog.CreateDefinition(context.Background(), category, services.DefinitionInput{
		Name:     name,
		ImageRef: &imageRef,
	})
	if err != nil {
		t.Fatalf("creating definition %q: %v", name, err)
	}
	return item
}

func selectionOf(item models.CatalogItem) services.Selection {
	return services.Selection{Category: item.Category, CatalogID: item.ID}
}

// recordingBlobStore remembers deleted references and can be told to fail.
type recordingBlobStore struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (store *recordingBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	return "/uploads/" + key, nil
}

func (store *recordingBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("not supported")
}

func (store *recordingBlobStore) Delete(ctx context.Context, ref string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.deleted = append(store.deleted, ref)
	return store.deleteErr
}

func (store *recordingBlobStore) deletedRefs() []string {
	store.mu.Lock()
	defer store.mu.Unlock()
	return append([]string(nil), store.deleted...)
}

// faultyTransactor lets the first failAfter clones through and then fails
// every AddClone with errDiskFull.
type faultyTransactor struct {
	inner     repository.Transactor
	failAfter int
}

var errDiskFull = errors.New("disk full")

func (transactor faultyTransactor) InTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return transactor.inner.InTx(ctx, func(repos repository.Repositories) error {
		repos.DailyMenus = &failingMenuRepository{
			DailyMenuRepository: repos.DailyMenus,
			failAfter:           transactor.failAfter,
		}
		return fn(repos)
	})
}

type failingMenuRepository struct {
	repository.DailyMenuRepository
	failAfter int
	calls     int
}

func (repo *failingMenuRepository) AddClone(ctx context.Context, clone models.DayBoundClone) (models.DayBoundClone, error) {
	repo.calls++
	if repo.calls > repo.failAfter {
		return models.DayBoundClone{}, errDiskFull
	}
	return repo.DailyMenuRepository.AddClone(ctx, clone)
}
