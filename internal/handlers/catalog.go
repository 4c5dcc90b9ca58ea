package handlers

import (
	"net/http"

	"github.com/KurhanTaha/DailyMealMenu/internal/services"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type definitionRequest struct {
	Name        string  `json:"name"`
	Ingredients string  `json:"ingredients"`
	Calories    int     `json:"calories"`
	IsActive    *bool   `json:"isActive"`
	ImageRef    *string `json:"imageRef"`
	// Update only. UploadedRef comes from POST /api/uploads/image.
	UploadedRef string `json:"uploadedRef"`
	RemoveImage bool   `json:"removeImage"`
	ImageURL    string `json:"imageUrl"`
}

func (request definitionRequest) input() services.DefinitionInput {
	return services.DefinitionInput{
		Name:        request.Name,
		Ingredients: request.Ingredients,
		Calories:    request.Calories,
		IsActive:    request.IsActive,
		ImageRef:    request.ImageRef,
	}
}

func (handler *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := handler.catalogService.ListCatalog(r.Context(), categoryParam(r))
	if err != nil {
		writeServiceError(w, err, "listing catalog")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Options serves the pick list used when assembling a menu.
func (handler *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	summaries, err := handler.catalogService.ActiveSummaries(r.Context(), categoryParam(r))
	if err != nil {
		writeServiceError(w, err, "listing catalog options")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (handler *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	item, err := handler.catalogService.GetDefinition(r.Context(), categoryParam(r), id)
	if err != nil {
		writeServiceError(w, err, "finding catalog definition")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (handler *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request definitionRequest
	if err := decodeJSON(w, r, &request, false); err != nil {
		writeServiceError(w, err, "decoding catalog definition")
		return
	}

	item, err := handler.catalogService.CreateDefinition(r.Context(), categoryParam(r), request.input())
	if err != nil {
		writeServiceError(w, err, "creating catalog definition")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (handler *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	var request definitionRequest
	if err := decodeJSON(w, r, &request, false); err != nil {
		writeServiceError(w, err, "decoding catalog definition")
		return
	}

	item, err := handler.catalogService.UpdateDefinition(r.Context(), categoryParam(r), id, request.input(), services.ImageChange{
		UploadedRef: request.UploadedRef,
		Remove:      request.RemoveImage,
		TypedURL:    request.ImageURL,
	})
	if err != nil {
		writeServiceError(w, err, "updating catalog definition")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (handler *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	if err := handler.catalogService.DeleteDefinition(r.Context(), categoryParam(r), id); err != nil {
		writeServiceError(w, err, "deleting catalog definition")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
