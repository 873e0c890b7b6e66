package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinSessionSecretLength is the shortest SESSION_SECRET accepted at startup.
const MinSessionSecretLength = 32

const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

type Config struct {
	Addr     string `env:"PARISH_ADDR" envDefault:":8080"`
	DBPath   string `env:"PARISH_DB_PATH" envDefault:"data/parish.db"`
	LogLevel slog.Level

	// Media storage.
	Storage      string `env:"PARISH_STORAGE" envDefault:"disk"`
	UploadDir    string `env:"PARISH_UPLOAD_DIR" envDefault:"public/images"`
	PublicBase   string `env:"PARISH_PUBLIC_BASE" envDefault:"/images"`
	S3Bucket     string `env:"PARISH_S3_BUCKET"`
	S3Region     string `env:"PARISH_S3_REGION" envDefault:"eu-north-1"`
	S3Endpoint   string `env:"PARISH_S3_ENDPOINT"`
	S3Prefix     string `env:"PARISH_S3_PREFIX"`
	S3PublicURL  string `env:"PARISH_S3_PUBLIC_URL"`
	MaxUploadMB  int64  `env:"PARISH_MAX_UPLOAD_MB" envDefault:"32"`
	VerifyImages bool   `env:"PARISH_VERIFY_IMAGES" envDefault:"true"`

	// Admin identity. An empty email or hash disables login entirely.
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	AdminName         string `env:"ADMIN_NAME" envDefault:"Admin"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"parish_session"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"336h"`

	LoginRPS    float64  `env:"PARISH_LOGIN_RPS" envDefault:"0.2"`
	LoginBurst  int      `env:"PARISH_LOGIN_BURST" envDefault:"5"`
	CORSOrigins []string `env:"PARISH_CORS_ORIGINS" envSeparator:","`
}

// AdminConfigured reports whether a login can ever succeed.
func (c *Config) AdminConfigured() bool {
	return c.AdminEmail != "" && c.AdminPasswordHash != ""
}

// MaxUploadBytes is the multipart memory and body limit for upload requests.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.LogLevel = getLogLevel("PARISH_LOG_LEVEL", slog.LevelInfo)
	cfg.AdminEmail = strings.TrimSpace(cfg.AdminEmail)
	cfg.AdminPasswordHash = strings.TrimSpace(cfg.AdminPasswordHash)
	cfg.PublicBase = strings.TrimRight(cfg.PublicBase, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes long, got %d", MinSessionSecretLength, len(c.SessionSecret))
	}

	if c.PublicBase == "" || !strings.HasPrefix(c.PublicBase, "/") {
		return fmt.Errorf("PARISH_PUBLIC_BASE must be an absolute path other than the site root, got %q", c.PublicBase)
	}

	switch c.Storage {
	case StorageDisk:
		if c.UploadDir == "" {
			return fmt.Errorf("PARISH_UPLOAD_DIR must be set for disk storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("PARISH_S3_BUCKET must be set for s3 storage")
		}
	default:
		return fmt.Errorf("PARISH_STORAGE must be %q or %q, got %q", StorageDisk, StorageS3, c.Storage)
	}

	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("PARISH_MAX_UPLOAD_MB must be positive")
	}

	return nil
}

func getLogLevel(key string, fallback slog.Level) slog.Level {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "":
		return fallback
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}
