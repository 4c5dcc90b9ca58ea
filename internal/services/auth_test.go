package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, startedAt time.Time) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	return NewAuthService(config.Config{
		SessionSecret:     "test-secret-test-secret-test-sec",
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		SessionTTL:        8 * time.Hour,
		StartedAt:         startedAt,
	})
}

// sessionRequest issues a session from service and returns a request carrying it.
func sessionRequest(t *testing.T, service *AuthService) *http.Request {
	t.Helper()
	recorder := httptest.NewRecorder()
	if err := service.SetSession(recorder, "admin"); err != nil {
		t.Fatalf("setting session: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range recorder.Result().Cookies() {
		request.AddCookie(cookie)
	}
	return request
}

func TestAuthenticate(t *testing.T) {
	service := newTestAuthService(t, time.Now())

	if err := service.Authenticate("admin", "correct horse"); err != nil {
		t.Errorf("expected valid credentials to pass, got %v", err)
	}
	if err := service.Authenticate("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if err := service.Authenticate("root", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong username, got %v", err)
	}
}

func TestSession_RoundTrip(t *testing.T) {
	service := newTestAuthService(t, time.Now().Add(-time.Minute))

	session, err := service.GetSession(sessionRequest(t, service))
	if err != nil {
		t.Fatalf("getting session: %v", err)
	}
	if session.Username != "admin" {
		t.Errorf("expected admin session, got %q", session.Username)
	}
}

func TestSession_RejectedAfterRestart(t *testing.T) {
	startedAt := time.Now().Add(-time.Hour)
	before := newTestAuthService(t, startedAt)
	before.now = func() time.Time { return startedAt.Add(time.Minute) }
	request := sessionRequest(t, before)

	after := newTestAuthService(t, startedAt.Add(30*time.Minute))
	after.secureCookie = before.secureCookie

	if _, err := after.GetSession(request); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSession_RejectedAfterTTL(t *testing.T) {
	startedAt := time.Now().Add(-time.Minute)
	service := newTestAuthService(t, startedAt)
	request := sessionRequest(t, service)

	service.now = func() time.Time { return time.Now().Add(9 * time.Hour) }

	if _, err := service.GetSession(request); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSession_MissingCookie(t *testing.T) {
	service := newTestAuthService(t, time.Now())

	if _, err := service.GetSession(httptest.NewRequest(http.MethodGet, "/", nil)); err == nil {
		t.Error("expected error without a session cookie")
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")); err != nil {
		t.Errorf("expected hash to verify, got %v", err)
	}
}
