package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	RemoteSupabase = "supabase"
	RemotePostgres = "postgres"
)

type Config struct {
	ServerPort string
	LogLevel   string

	// RemoteMode selects how the hosted database is reached: the PostgREST
	// API (default) or a direct Postgres connection.
	RemoteMode  string
	DatabaseURL string

	CachePath     string
	TimetablePath string

	Supabase struct {
		URL     string
		AnonKey string
		Bucket  string
	}

	Auth struct {
		JWTSecret   string
		TokenTTL    time.Duration
		EmailDomain string
	}

	SendGrid struct {
		APIKey    string
		FromEmail string
		FromName  string
	}

	Baidu struct {
		APIKey    string
		SecretKey string
	}

	PriceAlertInterval time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		RemoteMode:    strings.ToLower(getEnv("REMOTE_MODE", RemoteSupabase)),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CachePath:     getEnv("CACHE_PATH", "./data/cache.db"),
		TimetablePath: os.Getenv("TIMETABLE_PATH"),
	}

	switch cfg.RemoteMode {
	case RemoteSupabase:
		cfg.Supabase.URL = strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
		if cfg.Supabase.URL == "" {
			return nil, fmt.Errorf("SUPABASE_URL must be set")
		}
		cfg.Supabase.AnonKey = strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY"))
		if cfg.Supabase.AnonKey == "" {
			return nil, fmt.Errorf("SUPABASE_ANON_KEY must be set")
		}
		cfg.Supabase.Bucket = getEnv("SUPABASE_BUCKET", "item_images")
	case RemotePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set when REMOTE_MODE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown REMOTE_MODE %q", cfg.RemoteMode)
	}

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	ttl, err := getDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Auth.TokenTTL = ttl
	cfg.Auth.EmailDomain = strings.ToLower(getEnv("EMAIL_DOMAIN", "@ucdconnect.ie"))

	cfg.SendGrid.APIKey = os.Getenv("SENDGRID_API_KEY")
	cfg.SendGrid.FromEmail = os.Getenv("SENDGRID_FROM_EMAIL")
	cfg.SendGrid.FromName = getEnv("SENDGRID_FROM_NAME", "Campus SecondHand")
	if cfg.SendGrid.APIKey != "" && cfg.SendGrid.FromEmail == "" {
		return nil, fmt.Errorf("SENDGRID_FROM_EMAIL must be set when SENDGRID_API_KEY is set")
	}

	cfg.Baidu.APIKey = os.Getenv("BAIDU_API_KEY")
	cfg.Baidu.SecretKey = os.Getenv("BAIDU_SECRET_KEY")

	interval, err := getDuration("PRICE_ALERT_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	cfg.PriceAlertInterval = interval

	return cfg, nil
}

// VisionEnabled reports whether image labeling credentials are present.
func (c *Config) VisionEnabled() bool {
	return c.Baidu.APIKey != "" && c.Baidu.SecretKey != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
