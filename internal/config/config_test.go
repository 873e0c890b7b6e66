package config

import (
	"log/slog"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Storage != StorageDisk {
		t.Fatalf("expected disk storage, got %q", cfg.Storage)
	}
	if cfg.PublicBase != "/images" {
		t.Fatalf("expected /images public base, got %q", cfg.PublicBase)
	}
	if cfg.SessionMaxAge != 14*24*time.Hour {
		t.Fatalf("expected 14 day session, got %v", cfg.SessionMaxAge)
	}
	if cfg.MaxUploadBytes() != 32<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes())
	}
	if cfg.AdminConfigured() {
		t.Fatalf("admin should not be configured without env")
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "short")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestLoadRequiresBucketForS3(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("PARISH_STORAGE", "s3")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing bucket")
	}

	t.Setenv("PARISH_S3_BUCKET", "parish-media")
	if _, err := Load(); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
}

func TestLoadAdminAndLogLevel(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("ADMIN_EMAIL", "  admin@example.org ")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("PARISH_LOG_LEVEL", "WARN")
	t.Setenv("PARISH_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AdminEmail != "admin@example.org" {
		t.Fatalf("expected trimmed email, got %q", cfg.AdminEmail)
	}
	if !cfg.AdminConfigured() {
		t.Fatalf("expected admin to be configured")
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Fatalf("expected warn level, got %v", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadPublicBase(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)

	for _, bad := range []string{"/", "///", "images"} {
		t.Setenv("PARISH_PUBLIC_BASE", bad)
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for public base %q", bad)
		}
	}

	t.Setenv("PARISH_PUBLIC_BASE", "/photos/")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PublicBase != "/photos" {
		t.Fatalf("expected trimmed public base, got %q", cfg.PublicBase)
	}
}
