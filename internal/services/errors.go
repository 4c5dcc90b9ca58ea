package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/repository"
)

var (
	ErrDuplicateName       = errors.New("a dish with this name already exists in the category")
	ErrDuplicateAssignment = errors.New("a menu is already assigned to this date")
	ErrNotFound            = errors.New("not found")
	ErrEmptySource         = errors.New("menu has no items to capture")
	ErrValidation          = errors.New("invalid input")
	ErrStorage             = errors.New("storage failure")
)

// translate maps repository sentinels onto service errors and marks anything
// else as a storage failure.
func translate(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateName), errors.Is(err, ErrDuplicateAssignment),
		errors.Is(err, ErrEmptySource), errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	case errors.Is(err, repository.ErrDateTaken):
		return fmt.Errorf("%s: %w", action, ErrDuplicateAssignment)
	default:
		return fmt.Errorf("%s: %w: %w", action, ErrStorage, err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ParseDate accepts only YYYY-MM-DD calendar dates and returns them in
// canonical form.
func ParseDate(value string) (string, error) {
	parsed, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return "", validationError("date %q must be formatted as YYYY-MM-DD", value)
	}
	return parsed.Format(models.DateLayout), nil
}

func parseCategory(value models.Category) (models.Category, error) {
	category, ok := models.ParseCategory(string(value))
	if !ok {
		return "", validationError("unknown category %q", value)
	}
	return category, nil
}
