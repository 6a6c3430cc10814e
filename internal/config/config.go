package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	StoreDriver           string
	DatabaseURL           string
	MigrationsDir         string
	JWTSecret             string
	JWTIssuer             string
	AccessTTLSeconds      int64
	MediaStoragePath      string
	MediaMaxBytes         int64
	MetricsSampleSeconds  int
	CorsOrigins           []string
	AllowMaintainerSignup bool
	LogLevel              string
	LogDir                string
	LogRetentionDays      int
	Port                  string
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads the environment. It fails on missing required values instead of
// panicking so main can log the reason.
func Load() (Config, error) {
	cfg := Config{
		StoreDriver:           strings.ToLower(envOr("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:           envOr("DATABASE_URL", ""),
		MigrationsDir:         envOr("MIGRATIONS_DIR", "migrations"),
		JWTSecret:             envOr("JWT_SECRET", ""),
		JWTIssuer:             envOr("JWT_ISSUER", "hostel-complaints"),
		AccessTTLSeconds:      int64(envOrInt("ACCESS_TTL_SECONDS", 3600)),
		MediaStoragePath:      envOr("MEDIA_STORAGE_PATH", "storage/media"),
		MediaMaxBytes:         int64(envOrInt("MEDIA_MAX_BYTES", 5<<20)),
		MetricsSampleSeconds:  envOrInt("METRICS_SAMPLE_INTERVAL", 5),
		CorsOrigins:           parseCSV(envOr("CORS_ORIGINS", "")),
		AllowMaintainerSignup: envOrBool("ALLOW_MAINTAINER_SIGNUP", false),
		LogLevel:              envOr("LOG_LEVEL", "info"),
		LogDir:                envOr("LOG_DIR", "storage/logs"),
		LogRetentionDays:      envOrInt("LOG_RETENTION_DAYS", 7),
		Port:                  envOr("PORT", "5001"),
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("missing env var: JWT_SECRET")
	}
	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, fmt.Errorf("missing env var: DATABASE_URL")
		}
	case DriverMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
