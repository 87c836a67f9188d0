package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"characterhub/pkg/database"
)

const (
	DefaultHTTPAddr   = ":8080"
	DefaultSyncAddr   = ":7070"
	DefaultCatalogURL = "https://rickandmortyapi.com/api"
)

type Config struct {
	Env      string
	HTTPAddr string
	SyncAddr string // empty disables the TCP change feed
	LogLevel string
	DB       database.Config
	Catalog  CatalogConfig
	Auth     AuthConfig

	// RequireImage adds "image" to the fields a new filler character must carry.
	RequireImage bool
}

type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret   string // empty leaves write routes open
	JWTIssuer   string
	JWTDuration time.Duration
}

// LoadConfig reads an optional .env file and then the CHARACTERHUB_* environment.
func LoadConfig() Config {
	// .env is a dev convenience; production sets real env vars
	_ = godotenv.Load()

	return Config{
		Env:      getenv("CHARACTERHUB_ENV", "prod"),
		HTTPAddr: getenv("CHARACTERHUB_HTTP_ADDR", DefaultHTTPAddr),
		SyncAddr: getenvAllowEmpty("CHARACTERHUB_SYNC_ADDR", DefaultSyncAddr),
		LogLevel: getenv("CHARACTERHUB_LOG_LEVEL", "info"),
		DB:       database.DefaultConfig(),
		Catalog: CatalogConfig{
			BaseURL: strings.TrimRight(getenv("CHARACTERHUB_CATALOG_URL", DefaultCatalogURL), "/"),
			Timeout: getDuration("CHARACTERHUB_CATALOG_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("CHARACTERHUB_JWT_SECRET"),
			JWTIssuer:   getenv("CHARACTERHUB_JWT_ISSUER", "characterhub"),
			JWTDuration: getDuration("CHARACTERHUB_JWT_TTL", 24*time.Hour),
		},
		RequireImage: getBool("CHARACTERHUB_REQUIRE_IMAGE", false),
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

// getDuration accepts Go durations ("15s") or bare seconds ("15").
func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
