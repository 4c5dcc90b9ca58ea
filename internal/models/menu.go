package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the calendar date format used at every boundary.
const DateLayout = "2006-01-02"

// MaxMenuItems caps both a day's selections and a captured template.
const MaxMenuItems = 4

type Category string

const (
	CategorySoups      Category = "soups"
	CategoryMainDishes Category = "mainDishes"
	CategoryDesserts   Category = "desserts"
	CategorySalads     Category = "salads"
	CategoryStarters   Category = "starters"
	CategoryOthers     Category = "others"
)

// Categories lists every category in menu order.
var Categories = []Category{
	CategorySoups,
	CategoryMainDishes,
	CategoryDesserts,
	CategorySalads,
	CategoryStarters,
	CategoryOthers,
}

// ParseCategory accepts the canonical tags case-insensitively, plus the
// singular "maindish" spelling older clients send.
func ParseCategory(value string) (Category, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "maindish" {
		return CategoryMainDishes, true
	}
	for _, category := range Categories {
		if strings.ToLower(string(category)) == key {
			return category, true
		}
	}
	return "", false
}

// UnmarshalJSON normalizes known spellings; unknown tags are kept verbatim and
// fail Valid.
func (category *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, ok := ParseCategory(raw); ok {
		*category = parsed
		return nil
	}
	*category = Category(raw)
	return nil
}

func (category Category) Valid() bool {
	_, ok := category.Rank()
	return ok
}

// Rank is the position of the category in menu order.
func (category Category) Rank() (int, bool) {
	for i, candidate := range Categories {
		if candidate == category {
			return i, true
		}
	}
	return len(Categories), false
}

type ImagePolicy int

const (
	// ImageKeepExisting leaves the stored image alone unless an upload or a
	// removal is requested.
	ImageKeepExisting ImagePolicy = iota
	// ImageApplyTypedURL additionally replaces the stored image with the typed
	// URL when no upload or removal is requested; a blank URL clears it.
	ImageApplyTypedURL
)

func (category Category) ImagePolicy() ImagePolicy {
	switch category {
	case CategorySalads, CategoryStarters, CategoryOthers:
		return ImageApplyTypedURL
	default:
		return ImageKeepExisting
	}
}

// NormalizeName is the comparison key for catalog uniqueness.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CatalogItem is a catalog definition: a dish not bound to any day.
type CatalogItem struct {
	ID          int64     `json:"id"`
	Category    Category  `json:"category"`
	Name        string    `json:"name"`
	Ingredients string    `json:"ingredients"`
	ImageRef    *string   `json:"imageRef"`
	Calories    int       `json:"calories"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DayBoundClone is a value copy of a catalog definition owned by one daily menu.
type DayBoundClone struct {
	CatalogItem
	DailyMenuID int64 `json:"dailyMenuId"`
}

// CloneFor copies the definition's dish fields into a new clone for menuID.
func (item CatalogItem) CloneFor(menuID int64, now time.Time) DayBoundClone {
	return DayBoundClone{
		CatalogItem: CatalogItem{
			Category:    item.Category,
			Name:        item.Name,
			Ingredients: item.Ingredients,
			ImageRef:    item.ImageRef,
			Calories:    item.Calories,
			IsActive:    true,
			CreatedAt:   now,
		},
		DailyMenuID: menuID,
	}
}

type CatalogSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type DailyMenu struct {
	ID        int64           `json:"id"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []DayBoundClone `json:"items"`
}

// ItemsIn returns the menu's clones for one category, preserving order.
func (menu DailyMenu) ItemsIn(category Category) []DayBoundClone {
	var items []DayBoundClone
	for _, item := range menu.Items {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items
}

type DailyMenuSummary struct {
	ID     int64                 `json:"id"`
	Date   string                `json:"date"`
	Names  map[Category][]string `json:"names"`
	Counts map[Category]int      `json:"counts"`
	Total  int                   `json:"total"`
}

// TemplateItem keeps the persisted JSON keys stable.
type TemplateItem struct {
	Category  Category `json:"kategori"`
	Name      string   `json:"name"`
	CatalogID *int64   `json:"catalogId"`
}

type MenuTemplate struct {
	ID        int64          `json:"id"`
	Title     *string        `json:"title"`
	CreatedAt time.Time      `json:"createdAt"`
	Items     []TemplateItem `json:"items"`
}
