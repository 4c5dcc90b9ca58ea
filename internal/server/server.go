package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/KurhanTaha/DailyMealMenu/internal/blob"
	"github.com/KurhanTaha/DailyMealMenu/internal/config"
	"github.com/KurhanTaha/DailyMealMenu/internal/handlers"
	"github.com/KurhanTaha/DailyMealMenu/internal/middleware"
	"github.com/KurhanTaha/DailyMealMenu/internal/repository"
	"github.com/KurhanTaha/DailyMealMenu/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, authService *services.AuthService, blobs blob.Store) *Server {
	catalogRepo := repository.NewCatalogRepository(database)
	menuRepo := repository.NewDailyMenuRepository(database)
	templateRepo := repository.NewTemplateRepository(database)
	transactor := repository.NewTransactor(database)

	catalogService := services.NewCatalogService(catalogRepo, transactor, blobs)
	assignmentService := services.NewAssignmentService(menuRepo, transactor)
	templateService := services.NewTemplateService(templateRepo, transactor)

	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	menuHandler := handlers.NewMenuHandler(assignmentService, templateService)
	templateHandler := handlers.NewTemplateHandler(templateService, assignmentService)
	fileHandler := handlers.NewFileHandler(blobs)
	icalHandler := handlers.NewICalHandler(assignmentService, cfg.ICalToken)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/login", authHandler.Login)
	router.Post("/logout", authHandler.Logout)

	router.Get("/api/catalog/{category}/options", catalogHandler.Options)
	router.Get("/api/menus/by-date", menuHandler.ByDate)
	router.Get("/files/monthly", fileHandler.DownloadMonthly)
	router.Get("/uploads/*", fileHandler.ServeUpload)
	router.Get("/ical", icalHandler.Feed)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Get("/api/session", authHandler.Session)

		r.Get("/api/catalog/{category}", catalogHandler.List)
		r.Post("/api/catalog/{category}", catalogHandler.Create)
		r.Get("/api/catalog/{category}/{id}", catalogHandler.Get)
		r.Post("/api/catalog/{category}/{id}", catalogHandler.Update)
		r.Post("/api/catalog/{category}/{id}/delete", catalogHandler.Delete)

		r.Get("/api/menus", menuHandler.List)
		r.Post("/api/menus", menuHandler.Create)
		r.Post("/api/menus/bulk", menuHandler.CreateFull)
		r.Get("/api/menus/{id}", menuHandler.Get)
		r.Post("/api/menus/{id}/delete", menuHandler.Delete)
		r.Post("/api/menus/{id}/template", menuHandler.SaveAsTemplate)

		r.Get("/api/templates", templateHandler.List)
		r.Get("/api/templates/{id}", templateHandler.Get)
		r.Get("/api/templates/{id}/items", templateHandler.Items)
		r.Post("/api/templates/{id}/apply", templateHandler.Apply)
		r.Post("/api/templates/{id}/delete", templateHandler.Delete)

		r.Post("/api/uploads/image", fileHandler.UploadImage)
		r.Post("/files/monthly", fileHandler.UploadMonthly)
	})

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
