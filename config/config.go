// Package config loads the macro service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Cache    CacheConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Planner  PlannerConfig
	Lookup   LookupConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	RateLimit       int
	RateWindow      time.Duration
	LookupRateLimit int
	CORSOrigins     []string
	SwaggerUser     string
	SwaggerPass     string
	RequestTimeout  time.Duration
	// PublicBaseURL prefixes generated share links.
	PublicBaseURL string
}

// CacheConfig sizes the macro calculation cache.
type CacheConfig struct {
	Size   int
	TTL    time.Duration
	Shards int
}

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	LogsTTL      time.Duration
	Enabled      bool
	Breaker      BreakerConfig
}

// StorageConfig names the workspace keys.
type StorageConfig struct {
	ProductsKey string
	PlannerKey  string
	VisitedKey  string
}

// PlannerConfig selects how item amounts are interpreted.
type PlannerConfig struct {
	UnitKind string
}

// LookupConfig configures the Open Food Facts client.
type LookupConfig struct {
	Enabled   bool
	BaseURL   string
	PageSize  int
	Timeout   time.Duration
	UserAgent string
	CacheSize int
	CacheTTL  time.Duration
	Breaker   BreakerConfig
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads an optional .env file and builds a Config from the environment.
// Variables already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			RateLimit:       getEnvInt("RATE_LIMIT", 100),
			RateWindow:      getEnvDuration("RATE_WINDOW", time.Minute),
			LookupRateLimit: getEnvInt("LOOKUP_RATE_LIMIT", 20),
			CORSOrigins:     parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
			SwaggerUser:     getEnv("SWAGGER_USER", ""),
			SwaggerPass:     getEnv("SWAGGER_PASS", ""),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080/"), "/") + "/",
		},
		Cache: CacheConfig{
			Size:   getEnvInt("CACHE_SIZE", 1000),
			TTL:    getEnvDuration("CACHE_TTL", 5*time.Minute),
			Shards: getEnvInt("CACHE_SHARDS", 0),
		},
		Database: DatabaseConfig{
			URI:          getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName: getEnv("MONGODB_DATABASE", "macro_service"),
			LogsTTL:      getEnvDuration("MONGODB_LOGS_TTL", 30*24*time.Hour),
			Enabled:      getEnvBool("MONGODB_ENABLED", false),
			Breaker:      breakerFromEnv("CIRCUIT_BREAKER", 30*time.Second),
		},
		Storage: StorageConfig{
			ProductsKey: getEnv("STORAGE_PRODUCTS_KEY", "greenMacros_products"),
			PlannerKey:  getEnv("STORAGE_PLANNER_KEY", "greenMacros_planner"),
			VisitedKey:  getEnv("STORAGE_VISITED_KEY", "gm_hasVisited"),
		},
		Planner: PlannerConfig{
			UnitKind: getEnv("PLANNER_UNIT_KIND", "grams"),
		},
		Lookup: LookupConfig{
			Enabled:   getEnvBool("LOOKUP_ENABLED", true),
			BaseURL:   getEnv("LOOKUP_BASE_URL", "https://world.openfoodfacts.org"),
			PageSize:  getEnvInt("LOOKUP_PAGE_SIZE", 8),
			Timeout:   getEnvDuration("LOOKUP_TIMEOUT", 10*time.Second),
			UserAgent: getEnv("LOOKUP_USER_AGENT", "macro-service/1.0"),
			CacheSize: getEnvInt("LOOKUP_CACHE_SIZE", 256),
			CacheTTL:  getEnvDuration("LOOKUP_CACHE_TTL", time.Hour),
			Breaker:   breakerFromEnv("LOOKUP_CIRCUIT_BREAKER", time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
	}
}

func breakerFromEnv(prefix string, timeout time.Duration) BreakerConfig {
	return BreakerConfig{
		FailureThreshold: getEnvInt(prefix+"_FAILURE_THRESHOLD", 5),
		SuccessThreshold: getEnvInt(prefix+"_SUCCESS_THRESHOLD", 2),
		Timeout:          getEnvDuration(prefix+"_TIMEOUT", timeout),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseCORSOrigins(s string) []string {
	defaults := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if s == "" {
		return defaults
	}
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
