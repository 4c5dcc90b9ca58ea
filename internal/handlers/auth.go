package handlers

import (
	"log/slog"
	"net/http"

	"github.com/KurhanTaha/DailyMealMenu/internal/middleware"
	"github.com/KurhanTaha/DailyMealMenu/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := decodeJSON(w, r, &request, false); err != nil {
		writeServiceError(w, err, "decoding login")
		return
	}

	if err := handler.authService.Authenticate(request.Username, request.Password); err != nil {
		slog.Warn("rejected login", "username", request.Username)
		writeErrorMessage(w, http.StatusUnauthorized, err.Error())
		return
	}

	if err := handler.authService.SetSession(w, request.Username); err != nil {
		slog.Error("setting session", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "session error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"username": request.Username})
}

func (handler *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.authService.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session reports who is logged in.
func (handler *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"username": session.Username,
		"issuedAt": session.IssuedAt,
	})
}
