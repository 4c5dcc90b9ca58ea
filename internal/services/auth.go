package services

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/config"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "session"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("session expired")
)

type AuthService struct {
	username     string
	passwordHash []byte
	secureCookie *securecookie.SecureCookie
	startedAt    time.Time
	ttl          time.Duration
	now          func() time.Time
}

type SessionData struct {
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issued_at"`
}

func NewAuthService(cfg config.Config) *AuthService {
	secureCookie := securecookie.New([]byte(cfg.SessionSecret), nil)
	secureCookie.MaxAge(int(cfg.SessionTTL.Seconds()))

	return &AuthService{
		username:     cfg.AdminUsername,
		passwordHash: []byte(cfg.AdminPasswordHash),
		secureCookie: secureCookie,
		startedAt:    cfg.StartedAt,
		ttl:          cfg.SessionTTL,
		now:          time.Now,
	}
}

// HashPassword produces the value expected in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func (service *AuthService) Authenticate(username, password string) error {
	usernameMatches := subtle.ConstantTimeCompare([]byte(username), []byte(service.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(service.passwordHash, []byte(password))
	if !usernameMatches || passwordErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (service *AuthService) SetSession(w http.ResponseWriter, username string) error {
	data := SessionData{Username: username, IssuedAt: service.now()}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	value, err := service.secureCookie.Encode(sessionCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(service.ttl.Seconds()),
	})
	return nil
}

// GetSession rejects cookies issued before this process started or older than
// the session TTL.
func (service *AuthService) GetSession(r *http.Request) (SessionData, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return SessionData{}, fmt.Errorf("no session cookie: %w", err)
	}

	var decoded string
	if err := service.secureCookie.Decode(sessionCookieName, cookie.Value, &decoded); err != nil {
		return SessionData{}, fmt.Errorf("decoding session cookie: %w", err)
	}

	var session SessionData
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return SessionData{}, fmt.Errorf("unmarshaling session: %w", err)
	}

	if session.Username != service.username {
		return SessionData{}, fmt.Errorf("session for unknown user %q", session.Username)
	}
	if session.IssuedAt.Before(service.startedAt) {
		return SessionData{}, fmt.Errorf("session issued before restart: %w", ErrSessionExpired)
	}
	if service.now().Sub(session.IssuedAt) > service.ttl {
		return SessionData{}, ErrSessionExpired
	}
	return session, nil
}

func (service *AuthService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
