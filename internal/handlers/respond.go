package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/services"
	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP statuses. Unexpected
// errors are logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateName), errors.Is(err, services.ErrDuplicateAssignment):
		writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmptySource):
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error(action, "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a JSON body into target. An empty body is accepted when
// optional is true.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any, optional bool) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := decoder.Decode(target); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed request body", services.ErrValidation)
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", services.ErrValidation, chi.URLParam(r, "id"))
	}
	return id, nil
}

func categoryParam(r *http.Request) models.Category {
	return models.Category(chi.URLParam(r, "category"))
}
