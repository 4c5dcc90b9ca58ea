package handlers

import (
	"net/http"

	"github.com/KurhanTaha/DailyMealMenu/internal/services"
)

type MenuHandler struct {
	assignmentService *services.AssignmentService
	templateService   *services.TemplateService
}

func NewMenuHandler(assignmentService *services.AssignmentService, templateService *services.TemplateService) *MenuHandler {
	return &MenuHandler{
		assignmentService: assignmentService,
		templateService:   templateService,
	}
}

type assignRequest struct {
	Date       string               `json:"date"`
	Selections []services.Selection `json:"selections"`
}

func (handler *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := handler.assignmentService.List(r.Context())
	if err != nil {
		writeServiceError(w, err, "listing daily menus")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (handler *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	menu, err := handler.assignmentService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "finding daily menu")
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (handler *MenuHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	menu, err := handler.assignmentService.GetByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err, "finding daily menu by date")
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// Create is the menu builder save: up to four dishes, vanished selections
// are skipped.
func (handler *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	handler.assign(w, r, services.AssignOptions{Missing: services.MissingSkip})
}

// CreateFull requires exactly four dishes that all still exist.
func (handler *MenuHandler) CreateFull(w http.ResponseWriter, r *http.Request) {
	handler.assign(w, r, services.AssignOptions{Missing: services.MissingFail, RequireFullMenu: true})
}

func (handler *MenuHandler) assign(w http.ResponseWriter, r *http.Request, options services.AssignOptions) {
	var request assignRequest
	if err := decodeJSON(w, r, &request, false); err != nil {
		writeServiceError(w, err, "decoding menu")
		return
	}

	menu, err := handler.assignmentService.AssignMenu(r.Context(), request.Date, request.Selections, options)
	if err != nil {
		writeServiceError(w, err, "assigning menu")
		return
	}
	writeJSON(w, http.StatusCreated, menu)
}

func (handler *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	if err := handler.assignmentService.DeleteDailyMenu(r.Context(), id); err != nil {
		writeServiceError(w, err, "deleting daily menu")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *MenuHandler) SaveAsTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeServiceError(w, err, "parsing id")
		return
	}

	var request struct {
		Title *string `json:"title"`
	}
	if err := decodeJSON(w, r, &request, true); err != nil {
		writeServiceError(w, err, "decoding template title")
		return
	}

	template, err := handler.templateService.Capture(r.Context(), id, request.Title)
	if err != nil {
		writeServiceError(w, err, "capturing menu template")
		return
	}
	writeJSON(w, http.StatusCreated, template)
}
