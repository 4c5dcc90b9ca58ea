package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/KurhanTaha/DailyMealMenu/internal/blob"
	"github.com/go-chi/chi/v5"
)

const (
	maxImageSize      = 2 << 20
	maxMonthlyPDF     = 20 << 20
	monthlyMenuKey    = "files/monthly-menu.pdf"
	multipartOverhead = 1 << 20
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type FileHandler struct {
	blobs blob.Store
}

func NewFileHandler(blobs blob.Store) *FileHandler {
	return &FileHandler{blobs: blobs}
}

// UploadImage stores a dish image and returns its reference for a later
// catalog create or update.
func (handler *FileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+multipartOverhead)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	extension := strings.ToLower(path.Ext(header.Filename))
	if !imageExtensions[extension] {
		writeErrorMessage(w, http.StatusBadRequest, "only .jpg, .jpeg, .png and .webp images are allowed")
		return
	}
	if header.Size > maxImageSize {
		writeErrorMessage(w, http.StatusBadRequest, "image must be 2 MB or smaller")
		return
	}

	ref, err := handler.blobs.Put(r.Context(), blob.NewImageKey(extension), file, mime.TypeByExtension(extension))
	if err != nil {
		slog.Error("storing image", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to store image")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"ref": ref})
}

// UploadMonthly replaces the monthly menu PDF.
func (handler *FileHandler) UploadMonthly(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxMonthlyPDF+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "PDF file is required")
		return
	}
	defer file.Close()

	if strings.ToLower(path.Ext(header.Filename)) != ".pdf" {
		writeErrorMessage(w, http.StatusBadRequest, "only PDF files are allowed")
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		writeErrorMessage(w, http.StatusBadRequest, "could not read PDF")
		return
	}
	if http.DetectContentType(sniff[:n]) != "application/pdf" {
		writeErrorMessage(w, http.StatusBadRequest, "file is not a PDF")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "could not read PDF")
		return
	}

	ref, err := handler.blobs.Put(r.Context(), monthlyMenuKey, file, "application/pdf")
	if err != nil {
		slog.Error("storing monthly menu", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "failed to store monthly menu")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"ref": ref})
}

func (handler *FileHandler) DownloadMonthly(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, monthlyMenuKey, "inline; filename=monthly-menu.pdf")
}

// ServeUpload streams files stored on disk under /uploads/.
func (handler *FileHandler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, chi.URLParam(r, "*"), "")
}

func (handler *FileHandler) serve(w http.ResponseWriter, r *http.Request, key, disposition string) {
	file, err := handler.blobs.Open(r.Context(), key)
	if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("opening file", "key", key, "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	if _, err := io.Copy(w, file); err != nil {
		slog.Warn("streaming file", "key", key, "error", err)
	}
}
