package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/KurhanTaha/DailyMealMenu/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("BLOB_BACKEND", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("ADMIN_USERNAME", "")

	before := time.Now()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.AdminUsername != "admin" {
		t.Errorf("expected default admin username, got %q", cfg.AdminUsername)
	}
	if cfg.SessionTTL != 8*time.Hour {
		t.Errorf("expected 8h session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.BlobBackend != config.BlobBackendDisk {
		t.Errorf("expected disk blob backend, got %q", cfg.BlobBackend)
	}
	if cfg.StartedAt.Before(before) {
		t.Errorf("expected StartedAt to be stamped at load, got %s", cfg.StartedAt)
	}
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error without SESSION_SECRET")
	}
}

func TestLoad_RequiresPasswordHash(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error without ADMIN_PASSWORD_HASH")
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	setRequired(t)
	t.Setenv("BLOB_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for s3 backend without bucket")
	}
}

func TestLoad_RejectsBadTTL(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "soon")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unparseable SESSION_TTL")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := config.ParseLogLevel(tt.input); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
