package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds every runtime setting read from the environment.
type Config struct {
	AppEnv  string
	Port    string
	LogMode string
	LogFile string

	JWTSecret      string
	DatabaseURL    string
	StorageBackend string // postgres | memory

	CORSOrigins []string

	DraftBackend   string // postgres | redis | memory
	RedisURL       string
	DraftTTL       time.Duration
	DraftPurgeSpec string
	CartTTL        time.Duration

	R2Endpoint      string
	R2AccessKey     string
	R2SecretKey     string
	R2Bucket        string
	R2PublicBaseURL string

	TotemConfigPath string

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (outside production) and the process environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		AppEnv:  getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8000"),
		LogMode: getenv("LOG_MODE", "development"),
		LogFile: os.Getenv("LOG_FILE"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StorageBackend: strings.ToLower(getenv("STORAGE_BACKEND", "postgres")),

		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		DraftBackend:   strings.ToLower(getenv("DRAFT_BACKEND", "postgres")),
		RedisURL:       os.Getenv("REDIS_URL"),
		DraftTTL:       duration("DRAFT_TTL", 24*time.Hour),
		DraftPurgeSpec: getenv("DRAFT_PURGE_SPEC", "@every 1h"),
		CartTTL:        duration("CART_TTL", 6*time.Hour),

		R2Endpoint:      os.Getenv("R2_ENDPOINT"),
		R2AccessKey:     os.Getenv("R2_ACCESS_KEY"),
		R2SecretKey:     os.Getenv("R2_SECRET_KEY"),
		R2Bucket:        os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL: os.Getenv("R2_PUBLIC_BASE_URL"),

		TotemConfigPath: getenv("TOTEM_CONFIG_PATH", "./totem-config.json"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("missing env var: JWT_SECRET")
	}

	switch c.StorageBackend {
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("missing env var: DATABASE_URL")
		}
	case "memory":
	default:
		return errors.New("STORAGE_BACKEND must be postgres or memory")
	}

	switch c.DraftBackend {
	case "postgres":
		if c.StorageBackend != "postgres" {
			return errors.New("DRAFT_BACKEND=postgres requires STORAGE_BACKEND=postgres")
		}
	case "redis":
		if c.RedisURL == "" {
			return errors.New("DRAFT_BACKEND=redis requires REDIS_URL")
		}
	case "memory":
	default:
		return errors.New("DRAFT_BACKEND must be postgres, redis or memory")
	}

	return nil
}

// StorageEnabled reports whether object storage credentials are present.
func (c *Config) StorageEnabled() bool {
	return c.R2Endpoint != "" && c.R2Bucket != "" && c.R2AccessKey != "" && c.R2SecretKey != ""
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// duration accepts Go durations ("90m") or plain seconds ("3600").
func duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := cast.ToDurationE(raw)
	if err != nil || d <= 0 {
		return def
	}
	if _, err := cast.ToInt64E(raw); err == nil {
		return time.Duration(cast.ToInt64(raw)) * time.Second
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
