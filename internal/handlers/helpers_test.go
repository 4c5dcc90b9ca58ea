package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KurhanTaha/DailyMealMenu/internal/blob"
	"github.com/KurhanTaha/DailyMealMenu/internal/repository"
	"github.com/KurhanTaha/DailyMealMenu/internal/services"
	"github.com/KurhanTaha/DailyMealMenu/internal/testutil"
	"github.com/go-chi/chi/v5"
)

const testICalToken = "feed-token"

type testEnv struct {
	db     *sql.DB
	router *chi.Mux
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	transactor := repository.NewTransactor(db)

	blobs, err := blob.NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("creating blob store: %v", err)
	}

	catalogService := services.NewCatalogService(repository.NewCatalogRepository(db), transactor, blobs)
	assignmentService := services.NewAssignmentService(repository.NewDailyMenuRepository(db), transactor)
	templateService := services.NewTemplateService(repository.NewTemplateRepository(db), transactor)

	catalogHandler := NewCatalogHandler(catalogService)
	menuHandler := NewMenuHandler(assignmentService, templateService)
	templateHandler := NewTemplateHandler(templateService, assignmentService)
	fileHandler := NewFileHandler(blobs)
	icalHandler := NewICalHandler(assignmentService, testICalToken)

	router := chi.NewRouter()
	router.Get("/api/catalog/{category}/options", catalogHandler.Options)
	router.Get("/api/catalog/{category}", catalogHandler.List)
	router.Post("/api/catalog/{category}", catalogHandler.Create)
	router.Get("/api/catalog/{category}/{id}", catalogHandler.Get)
	router.Post("/api/catalog/{category}/{id}", catalogHandler.Update)
	router.Post("/api/catalog/{category}/{id}/delete", catalogHandler.Delete)
	router.Get("/api/menus", menuHandler.List)
	router.Get("/api/menus/by-date", menuHandler.ByDate)
	router.Post("/api/menus", menuHandler.Create)
	router.Post("/api/menus/bulk", menuHandler.CreateFull)
	router.Get("/api/menus/{id}", menuHandler.Get)
	router.Post("/api/menus/{id}/delete", menuHandler.Delete)
	router.Post("/api/menus/{id}/template", menuHandler.SaveAsTemplate)
	router.Get("/api/templates", templateHandler.List)
	router.Get("/api/templates/{id}", templateHandler.Get)
	router.Get("/api/templates/{id}/items", templateHandler.Items)
	router.Post("/api/templates/{id}/apply", templateHandler.Apply)
	router.Post("/api/templates/{id}/delete", templateHandler.Delete)
	router.Post("/api/uploads/image", fileHandler.UploadImage)
	router.Get("/uploads/*", fileHandler.ServeUpload)
	router.Post("/files/monthly", fileHandler.UploadMonthly)
	router.Get("/files/monthly", fileHandler.DownloadMonthly)
	router.Get("/ical", icalHandler.Feed)

	return testEnv{db: db, router: router}
}

func (env testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}

func (env testEnv) upload(t *testing.T, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	part.Write(content)
	writer.Close()

	request := httptest.NewRequest(http.MethodPost, path, &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.NewDecoder(recorder.Body).Decode(&value); err != nil {
		t.Fatalf("decoding response body %q: %v", recorder.Body.String(), err)
	}
	return value
}

func expectStatus(t *testing.T, recorder *httptest.ResponseRecorder, status int) {
	t.Helper()
	if recorder.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, recorder.Code, recorder.Body.String())
	}
}

func httpPostRaw(env testEnv, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	env.router.ServeHTTP(recorder, request)
	return recorder
}
