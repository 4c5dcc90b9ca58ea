package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected Category
		ok       bool
	}{
		{"soups", CategorySoups, true},
		{" Soups ", CategorySoups, true},
		{"maindishes", CategoryMainDishes, true},
		{"mainDishes", CategoryMainDishes, true},
		{"maindish", CategoryMainDishes, true},
		{"OTHERS", CategoryOthers, true},
		{"drinks", "", false},
		{"", "", false},
	}

	for _, testCase := range tests {
		t.Run(testCase.input, func(t *testing.T) {
			category, ok := ParseCategory(testCase.input)
			if ok != testCase.ok {
				t.Fatalf("expected ok=%v, got %v", testCase.ok, ok)
			}
			if category != testCase.expected {
				t.Errorf("expected %q, got %q", testCase.expected, category)
			}
		})
	}
}

func TestCategory_RankFollowsMenuOrder(t *testing.T) {
	for i, category := range Categories {
		rank, ok := category.Rank()
		if !ok || rank != i {
			t.Errorf("expected %s at rank %d, got %d (ok=%v)", category, i, rank, ok)
		}
	}
	if _, ok := Category("drinks").Rank(); ok {
		t.Error("expected unknown category to have no rank")
	}
}

func TestTemplateItem_ReadsLegacyCategorySpelling(t *testing.T) {
	var items []TemplateItem
	raw := `[{"kategori":"maindishes","name":"Rice","catalogId":2},{"kategori":"soups","name":"Lentil","catalogId":null}]`
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("unmarshalling items: %v", err)
	}
	if items[0].Category != CategoryMainDishes {
		t.Errorf("expected mainDishes, got %q", items[0].Category)
	}
	if items[0].CatalogID == nil || *items[0].CatalogID != 2 {
		t.Errorf("expected catalog id 2, got %v", items[0].CatalogID)
	}
	if items[1].CatalogID != nil {
		t.Errorf("expected nil catalog id, got %v", *items[1].CatalogID)
	}
}

func TestTemplateItem_WritesStableKeys(t *testing.T) {
	encoded, err := json.Marshal([]TemplateItem{{Category: CategorySoups, Name: "Lentil"}})
	if err != nil {
		t.Fatalf("marshalling items: %v", err)
	}
	expected := `[{"kategori":"soups","name":"Lentil","catalogId":null}]`
	if string(encoded) != expected {
		t.Errorf("expected %s, got %s", expected, encoded)
	}
}

func TestCatalogItem_CloneFor(t *testing.T) {
	image := "/uploads/lentil.png"
	source := CatalogItem{
		ID: 7, Category: CategorySoups, Name: "Lentil", Ingredients: "lentils, onion",
		ImageRef: &image, Calories: 180, IsActive: false,
	}
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	clone := source.CloneFor(42, now)

	if clone.ID != 0 {
		t.Errorf("expected clone to have no id yet, got %d", clone.ID)
	}
	if clone.DailyMenuID != 42 {
		t.Errorf("expected menu id 42, got %d", clone.DailyMenuID)
	}
	if !clone.IsActive {
		t.Error("expected clone to be active")
	}
	if clone.ImageRef == nil || *clone.ImageRef != image {
		t.Errorf("expected shared image ref, got %v", clone.ImageRef)
	}
	if clone.Name != "Lentil" || clone.Calories != 180 || clone.Ingredients != "lentils, onion" {
		t.Errorf("unexpected copied fields: %+v", clone.CatalogItem)
	}
	if !clone.CreatedAt.Equal(now) {
		t.Errorf("expected created at %v, got %v", now, clone.CreatedAt)
	}
}

func TestNormalizeName(t *testing.T) {
	if NormalizeName("  Mercimek Çorbası ") != "mercimek çorbası" {
		t.Errorf("unexpected normalized name %q", NormalizeName("  Mercimek Çorbası "))
	}
}
