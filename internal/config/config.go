// Package config loads process configuration from the environment. Values are
// read once at startup and treated as read only afterwards.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Config is the full process configuration.
type Config struct {
	ProjectName string
	HTTPAddr    string
	CORSOrigins []string
	Debug       bool

	// Token signing. Access and refresh TTLs are independent values; the 7d
	// access default mirrors the deployed configuration and is deliberately
	// not coupled to the refresh TTL.
	SigningSecret    string
	SigningAlgorithm string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	// External identity provider. When SupabaseURL is empty the service runs
	// on the in-process development provider.
	SupabaseURL     string
	SupabaseAnonKey string
	GoogleClientID  string

	// Profile storage.
	DatabaseDSN string

	// Reconciler tuning.
	ReconcileAttempts  int
	ReconcileBaseDelay time.Duration
}

// Load reads the environment into a Config, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ProjectName: envDefault("PROJECT_NAME", "CronoPlan API"),
		HTTPAddr:    envDefault("HTTP_ADDR", ":8080"),
		CORSOrigins: splitList(envDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		Debug:       envBool("DEBUG", false),

		SigningSecret:    os.Getenv("SECRET_KEY"),
		SigningAlgorithm: envDefault("ALGORITHM", "HS256"),
		AccessTokenTTL:   envDuration("ACCESS_TOKEN_TTL", 168*time.Hour),
		RefreshTokenTTL:  envDuration("REFRESH_TOKEN_TTL", 720*time.Hour),

		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),

		DatabaseDSN: envDefault("DATABASE_DSN", "file:cronoplan.db?cache=shared"),

		ReconcileAttempts:  envInt("RECONCILE_MAX_ATTEMPTS", 4),
		ReconcileBaseDelay: envDuration("RECONCILE_BASE_DELAY", 250*time.Millisecond),
	}

	if cfg.SigningSecret == "" {
		return nil, goerrors.New("SECRET_KEY must be set", goerrors.CategoryBadInput)
	}

	if cfg.SupabaseURL != "" && cfg.SupabaseAnonKey == "" {
		return nil, goerrors.New("SUPABASE_ANON_KEY must be set when SUPABASE_URL is configured", goerrors.CategoryBadInput)
	}

	return cfg, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
