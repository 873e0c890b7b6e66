package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Oxyrus/parish/internal/auth"
	"github.com/Oxyrus/parish/internal/config"
	"github.com/Oxyrus/parish/internal/gallery"
	"github.com/Oxyrus/parish/internal/logging"
	"github.com/Oxyrus/parish/internal/media"
	"github.com/Oxyrus/parish/internal/router"
	"github.com/Oxyrus/parish/internal/settings"
	"github.com/Oxyrus/parish/internal/storage/sqlite"
)

func main() {
	bootstrapLogger := logging.New(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open sqlite database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close sqlite database", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settingsService := settings.NewService(logger, store.Settings())
	if err := settingsService.EnsureDefaults(ctx); err != nil {
		logger.Error("failed to initialise settings", "error", err)
		os.Exit(1)
	}

	gate := auth.NewGate(logger, auth.Identity{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		Name:         cfg.AdminName,
	})
	if err := gate.Sync(ctx, store.Admins()); err != nil {
		logger.Error("failed to sync admin", "error", err)
		os.Exit(1)
	}

	files, err := newIngestor(cfg, logger)
	if err != nil {
		logger.Error("failed to prepare media storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}

	r, err := router.New(cfg, logger, router.Deps{
		Store:     store,
		Gate:      gate,
		Tokens:    auth.NewTokens([]byte(cfg.SessionSecret), cfg.SessionMaxAge),
		Settings:  settingsService,
		Files:     files,
		Inspector: media.Inspector{Decode: cfg.VerifyImages},
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	logger.Info("starting server", "addr", cfg.Addr, "storage", cfg.Storage)

	if err := r.Run(cfg.Addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newIngestor(cfg *config.Config, logger *slog.Logger) (gallery.Ingester, error) {
	var backend media.Backend

	switch cfg.Storage {
	case config.StorageS3:
		s3, err := media.NewS3Backend(media.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		backend = s3
	default:
		disk, err := media.NewDiskBackend(cfg.UploadDir, cfg.PublicBase)
		if err != nil {
			return nil, err
		}
		backend = disk
	}

	return media.NewIngestor(logger, backend), nil
}
