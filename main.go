package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/KurhanTaha/DailyMealMenu/internal/blob"
	"github.com/KurhanTaha/DailyMealMenu/internal/config"
	"github.com/KurhanTaha/DailyMealMenu/internal/database"
	"github.com/KurhanTaha/DailyMealMenu/internal/server"
	"github.com/KurhanTaha/DailyMealMenu/internal/services"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "daily-menu",
		Short:         "Daily meal menu service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), hashPasswordCmd())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: config.ParseLogLevel(cfg.LogLevel),
			})))

			db, err := database.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			blobs, err := newBlobStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("creating blob store: %w", err)
			}

			authService := services.NewAuthService(cfg)

			srv := server.New(db, cfg, authService, blobs)
			return srv.Start()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DatabasePath()
			if err != nil {
				return err
			}

			db, err := database.Open(path)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}
			slog.Info("database migrated", "path", path)
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "Print a bcrypt hash for ADMIN_PASSWORD_HASH. The password is read from stdin when not given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := services.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	if cfg.BlobBackend == config.BlobBackendS3 {
		return blob.NewS3Store(ctx, blob.S3Config{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	}
	return blob.NewDiskStore(cfg.UploadDir, "/uploads")
}
