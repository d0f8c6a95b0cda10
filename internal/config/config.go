package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort               = "3001"
	defaultStorageRoot        = "./storage"
	defaultUploadSubdir       = "videos"
	defaultPublicBase         = "/media"
	defaultMaxUploadSizeMB    = "500"
	defaultRateLimitPerMinute = "60"
	defaultDatabaseURL        = "eralearn.db"
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultMediaTokenTTL      = "5m"
	defaultAdminRole          = "admin"
	defaultSessionStore       = "db"
	defaultSessionIdleTTL     = "12h"
	defaultCertificateDir     = "./data/certificates"

	maxUploadSizeCeilingMB = 10240
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// Config is read once at startup and handed to every component.
// Nothing mutates it afterwards.
type Config struct {
	AppEnv  string
	Port    string
	GinMode string

	StorageRoot     string
	UploadSubdir    string
	PublicBase      string
	MaxUploadSizeMB int

	AllowedOrigins     []string
	RateLimitPerMinute int

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	DatabaseURL string

	JWTSecret              string
	MediaTokenTTL          time.Duration
	AdminRole              string
	InternalRedirectPrefix string

	SessionStore         string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	SessionIdleTTL       time.Duration
	EnforceSingleSession bool

	CertificateDir string
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = strings.TrimSpace(getEnv("PORT", defaultPort))
	cfg.GinMode = strings.ToLower(strings.TrimSpace(getEnv("GIN_MODE", "release")))

	cfg.StorageRoot = strings.TrimSpace(getEnv("STORAGE_ROOT", getEnv("VIDEO_DIR", defaultStorageRoot)))
	cfg.UploadSubdir = strings.Trim(strings.TrimSpace(getEnv("UPLOAD_SUBDIR", defaultUploadSubdir)), "/")
	cfg.PublicBase = "/" + strings.Trim(strings.TrimSpace(getEnv("PUBLIC_BASE", defaultPublicBase)), "/")
	cfg.AllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))
	cfg.LogPath = strings.TrimSpace(os.Getenv("LOG_PATH"))
	cfg.LogCompress = parseBoolEnv("LOG_COMPRESS", "false")

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.AdminRole = strings.TrimSpace(getEnv("ADMIN_ROLE", defaultAdminRole))
	cfg.InternalRedirectPrefix = strings.TrimRight(strings.TrimSpace(os.Getenv("INTERNAL_REDIRECT_PREFIX")), "/")

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", defaultSessionStore)))
	cfg.RedisAddr = strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.EnforceSingleSession = parseBoolEnv("ENFORCE_SINGLE_SESSION", "false")

	cfg.CertificateDir = strings.TrimSpace(getEnv("CERTIFICATE_DIR", defaultCertificateDir))

	var err error
	if cfg.MaxUploadSizeMB, err = parseIntEnv("MAX_UPLOAD_SIZE_MB", defaultMaxUploadSizeMB); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = parseIntEnv("RATE_LIMIT_PER_MINUTE", defaultRateLimitPerMinute); err != nil {
		return nil, err
	}
	if cfg.LogMaxSizeMB, err = parseIntEnv("LOG_MAX_SIZE_MB", "100"); err != nil {
		return nil, err
	}
	if cfg.LogMaxBackups, err = parseIntEnv("LOG_MAX_BACKUPS", "3"); err != nil {
		return nil, err
	}
	if cfg.LogMaxAgeDays, err = parseIntEnv("LOG_MAX_AGE_DAYS", "7"); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = parseIntEnv("REDIS_DB", "0"); err != nil {
		return nil, err
	}
	if cfg.MediaTokenTTL, err = parseDurationEnv("MEDIA_TOKEN_TTL", defaultMediaTokenTTL); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTTL, err = parseDurationEnv("SESSION_IDLE_TTL", defaultSessionIdleTTL); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies the same checks as FromEnv, for configs built in code.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}
	if cfg.StorageRoot == "" {
		return fmt.Errorf("STORAGE_ROOT must not be empty")
	}
	if strings.Contains(cfg.UploadSubdir, "..") {
		return fmt.Errorf("UPLOAD_SUBDIR must stay inside STORAGE_ROOT")
	}
	if cfg.PublicBase == "/" || strings.HasPrefix(cfg.PublicBase, "/api") {
		return fmt.Errorf("PUBLIC_BASE must be a dedicated prefix outside /api, got %q", cfg.PublicBase)
	}
	if cfg.MaxUploadSizeMB < 1 || cfg.MaxUploadSizeMB > maxUploadSizeCeilingMB {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be between 1 and %d", maxUploadSizeCeilingMB)
	}
	if err := validateOrigins(cfg.AllowedOrigins); err != nil {
		return err
	}
	if cfg.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be >= 0")
	}
	if cfg.MediaTokenTTL <= 0 {
		return fmt.Errorf("MEDIA_TOKEN_TTL must be > 0")
	}
	if cfg.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be > 0")
	}
	if cfg.SessionStore != "db" && cfg.SessionStore != "redis" {
		return fmt.Errorf("SESSION_STORE must be one of: db, redis")
	}
	if cfg.CertificateDir == "" {
		return fmt.Errorf("CERTIFICATE_DIR must not be empty")
	}
	// everything under STORAGE_ROOT is publicly served
	if isWithin(cfg.CertificateDir, cfg.StorageRoot) {
		return fmt.Errorf("CERTIFICATE_DIR must be outside STORAGE_ROOT")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func validateOrigins(origins []string) error {
	if len(origins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	if len(origins) == 1 && origins[0] == "*" {
		return nil
	}
	for _, o := range origins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q must start with http:// or https://", o)
		}
	}
	return nil
}

// isWithin reports whether dir is root or lies below it.
func isWithin(dir, root string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseListEnv(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
