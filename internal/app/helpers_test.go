package app

import (
	"time"

	"github.com/guttosm/macro-service/config"
)

// testConfig is an in-memory configuration with the food database disabled.
func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			RateLimit:      100,
			RateWindow:     time.Minute,
			RequestTimeout: 30 * time.Second,
			PublicBaseURL:  "http://localhost:8080/",
		},
		Cache: config.CacheConfig{Size: 100, TTL: time.Minute},
		Storage: config.StorageConfig{
			ProductsKey: "greenMacros_products",
			PlannerKey:  "greenMacros_planner",
			VisitedKey:  "gm_hasVisited",
		},
		Planner: config.PlannerConfig{UnitKind: "grams"},
		Lookup: config.LookupConfig{
			BaseURL:  "http://127.0.0.1:1",
			PageSize: 5,
			Timeout:  time.Second,
			Breaker:  config.BreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, Timeout: time.Second},
		},
	}
}
