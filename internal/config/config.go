package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDatabasePath = "./data/daily-menu.db"

const (
	BlobBackendDisk = "disk"
	BlobBackendS3   = "s3"
)

type Config struct {
	DatabasePath      string
	Port              string
	LogLevel          string
	SessionSecret     string
	AdminUsername     string
	AdminPasswordHash string
	SessionTTL        time.Duration
	BlobBackend       string
	UploadDir         string
	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKey       string
	S3SecretKey       string
	S3PublicBaseURL   string
	ICalToken         string
	// StartedAt invalidates sessions issued by an earlier process.
	StartedAt time.Time
}

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	config := Config{
		DatabasePath:      envOrDefault("DATABASE_PATH", defaultDatabasePath),
		Port:              envOrDefault("PORT", "8080"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		AdminUsername:     envOrDefault("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		BlobBackend:       strings.ToLower(envOrDefault("BLOB_BACKEND", BlobBackendDisk)),
		UploadDir:         envOrDefault("UPLOAD_DIR", "./data/uploads"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Region:          os.Getenv("S3_REGION"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3AccessKey:       os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:       os.Getenv("S3_SECRET_KEY"),
		S3PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
		ICalToken:         os.Getenv("ICAL_TOKEN"),
		StartedAt:         time.Now(),
	}

	ttl, err := time.ParseDuration(envOrDefault("SESSION_TTL", "8h"))
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	config.SessionTTL = ttl

	if config.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	if config.AdminPasswordHash == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD_HASH is required")
	}

	switch config.BlobBackend {
	case BlobBackendDisk:
	case BlobBackendS3:
		if config.S3Bucket == "" {
			return Config{}, fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND is s3")
		}
	default:
		return Config{}, fmt.Errorf("unknown BLOB_BACKEND %q", config.BlobBackend)
	}

	return config, nil
}

// DatabasePath resolves only DATABASE_PATH, for commands that need no
// credentials.
func DatabasePath() (string, error) {
	if err := loadDotEnv(); err != nil {
		return "", err
	}
	return envOrDefault("DATABASE_PATH", defaultDatabasePath), nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ParseLogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func ParseLogLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
