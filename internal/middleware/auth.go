package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/KurhanTaha/DailyMealMenu/internal/services"
)

type contextKey string

const SessionContextKey contextKey = "session"

// RequireAuth answers 401 unless the request carries a valid admin session.
func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := authService.GetSession(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "login required"})
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(ctx context.Context) services.SessionData {
	session, _ := ctx.Value(SessionContextKey).(services.SessionData)
	return session
}
