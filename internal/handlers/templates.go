package handlers

import (
	"net/http"

	"github.com/KurhanTaha/DailyMealMenu/internal/services"
)

type TemplateHandler struct {
	templateService   *services.TemplateService
	assignmentService *services.AssignmentService
}

func NewTemplateHandler(templateService *services.TemplateService, assignmentService *services.AssignmentService) *TemplateHandler {
	return &TemplateHandler{
		templateService:   templateService,
		assignmentService: assignmentService,
	}
}

func (handler *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := handler.templateService.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "listing menu templates")
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (handler *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	template, err := handler.templateService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "finding menu template")
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (handler *TemplateHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	items, err := handler.templateService.Items(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "reading menu template items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Apply assigns the template's linked dishes to a date with the lenient
// policy.
func (handler *TemplateHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	var request struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(w, r, &request, false); err != nil {
		writeServiceError(w, err, "decoding template date")
		return
	}

	template, err := handler.templateService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "finding menu template")
		return
	}

	menu, err := handler.assignmentService.AssignMenu(r.Context(), request.Date,
		services.Selections(template), services.AssignOptions{Missing: services.MissingSkip})
	if err != nil {
		writeServiceError(w, err, "applying menu template")
		return
	}
	writeJSON(w, http.StatusCreated, menu)
}

func (handler *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	if err := handler.templateService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "deleting menu template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
