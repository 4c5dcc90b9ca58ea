package handlers

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/models"
	"github.com/KurhanTaha/DailyMealMenu/internal/services"
	ical "github.com/arran4/golang-ical"
)

var categoryLabels = map[models.Category]string{
	models.CategorySoups:      "Soups",
	models.CategoryMainDishes: "Main dishes",
	models.CategoryDesserts:   "Desserts",
	models.CategorySalads:     "Salads",
	models.CategoryStarters:   "Starters",
	models.CategoryOthers:     "Others",
}

// ICalHandler publishes assigned menus as all-day calendar events.
type ICalHandler struct {
	assignmentService *services.AssignmentService
	token             string
}

func NewICalHandler(assignmentService *services.AssignmentService, token string) *ICalHandler {
	return &ICalHandler{
		assignmentService: assignmentService,
		token:             token,
	}
}

func (handler *ICalHandler) Feed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if handler.token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(handler.token)) != 1 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summaries, err := handler.assignmentService.List(r.Context())
	if err != nil {
		slog.Error("finding daily menus for ical", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId("-//Daily Menu//Daily Menu//EN")
	calendar.SetXWRCalName("Daily Menu")

	now := time.Now()
	for _, summary := range summaries {
		day, err := time.Parse(models.DateLayout, summary.Date)
		if err != nil {
			slog.Debug("skipping menu with unparseable date", "date", summary.Date)
			continue
		}

		var names, lines []string
		for _, category := range models.Categories {
			dishes := summary.Names[category]
			if len(dishes) == 0 {
				continue
			}
			names = append(names, dishes...)
			lines = append(lines, fmt.Sprintf("%s: %s", categoryLabels[category], strings.Join(dishes, ", ")))
		}

		event := calendar.AddEvent(fmt.Sprintf("menu-%s@daily-menu", summary.Date))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if len(names) == 0 {
			event.SetSummary("Menu")
		} else {
			event.SetSummary("Menu: " + strings.Join(names, ", "))
		}
		if len(lines) > 0 {
			event.SetDescription(strings.Join(lines, "\n"))
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=daily-menu.ics")
	w.Write([]byte(calendar.Serialize()))
}
