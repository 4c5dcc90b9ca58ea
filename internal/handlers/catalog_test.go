package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestCatalogHandler_CreateAndList(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.do(t, http.MethodPost, "/api/catalog/soups", map[string]any{
		"name": "Lentil", "ingredients": "lentils, onion", "calories": 180,
	})
	expectStatus(t, recorder, http.StatusCreated)
	created := decodeBody[models.CatalogItem](t, recorder)
	if created.ID == 0 || created.Category != models.CategorySoups || !created.IsActive {
		t.Errorf("unexpected created definition %+v", created)
	}

	recorder = env.do(t, http.MethodPost, "/api/catalog/soups", map[string]any{"name": "LENTIL"})
	expectStatus(t, recorder, http.StatusConflict)

	recorder = env.do(t, http.MethodGet, "/api/catalog/soups", nil)
	expectStatus(t, recorder, http.StatusOK)
	items := decodeBody[[]models.CatalogItem](t, recorder)
	if len(items) != 1 || items[0].Name != "Lentil" {
		t.Errorf("expected one Lentil definition, got %+v", items)
	}

	recorder = env.do(t, http.MethodGet, fmt.Sprintf("/api/catalog/soups/%d", created.ID), nil)
	expectStatus(t, recorder, http.StatusOK)
}

func TestCatalogHandler_RejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	expectStatus(t, env.do(t, http.MethodPost, "/api/catalog/breakfast", map[string]any{"name": "Eggs"}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodPost, "/api/catalog/soups", map[string]any{"name": ""}), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodGet, "/api/catalog/soups/abc", nil), http.StatusBadRequest)
	expectStatus(t, env.do(t, http.MethodGet, "/api/catalog/soups/99", nil), http.StatusNotFound)
}

func TestCatalogHandler_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)

	id := testutil.InsertDish(t, env.db, models.CategorySalads, "Shepherd", true)
	path := fmt.Sprintf("/api/catalog/salads/%d", id)

	recorder := env.do(t, http.MethodPost, path, map[string]any{
		"name": "Shepherd Salad", "calories": 90, "imageUrl": "https://example.com/salad.png",
	})
	expectStatus(t, recorder, http.StatusOK)
	updated := decodeBody[models.CatalogItem](t, recorder)
	if updated.Name != "Shepherd Salad" || updated.ImageRef == nil || *updated.ImageRef != "https://example.com/salad.png" {
		t.Errorf("unexpected updated definition %+v", updated)
	}

	expectStatus(t, env.do(t, http.MethodPost, path+"/delete", nil), http.StatusNoContent)
	expectStatus(t, env.do(t, http.MethodPost, path+"/delete", nil), http.StatusNotFound)
}

func TestCatalogHandler_Options(t *testing.T) {
	env := newTestEnv(t)

	pilaf := testutil.InsertDish(t, env.db, models.CategoryMainDishes, "Pilaf", true)
	testutil.InsertDish(t, env.db, models.CategoryMainDishes, "PILAF", true)
	testutil.InsertDish(t, env.db, models.CategoryMainDishes, "Kebab", false)

	recorder := env.do(t, http.MethodGet, "/api/catalog/mainDishes/options", nil)
	expectStatus(t, recorder, http.StatusOK)

	expected := []models.CatalogSummary{{ID: pilaf, Name: "Pilaf"}}
	if diff := cmp.Diff(expected, decodeBody[[]models.CatalogSummary](t, recorder)); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}
