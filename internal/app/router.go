package app

import (
	"github.com/guttosm/macro-service/config"
	"github.com/guttosm/macro-service/internal/http"
	"github.com/guttosm/macro-service/internal/service"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	Handler       *http.Handler
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter builds the handlers, the readiness checks and the
// router configuration. dbComponents may be nil.
func InitializeRouter(services *ServiceComponents, dbComponents *DatabaseComponents, cfg config.Config) *RouterComponents {
	handler := http.NewHandler(http.Services{
		Products: services.Products,
		Planner:  services.Planner,
		Share:    services.Share,
		Session:  services.Session,
		Transfer: services.Transfer,
		Lookup:   services.Lookup,
	})

	healthHandler := http.NewHealthHandler()
	if services.LookupCircuitBreaker != nil {
		healthHandler.RegisterCircuitBreaker("openfoodfacts", services.LookupCircuitBreaker)
	}

	var loggingService service.LoggingService
	if dbComponents != nil {
		loggingService = dbComponents.LoggingService
		if dbComponents.DB != nil {
			healthHandler.RegisterChecker("mongodb", http.HealthCheckFunc(dbComponents.DB.HealthCheck))
		}
		if dbComponents.StateCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_state", dbComponents.StateCircuitBreaker)
		}
		if dbComponents.LogsCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_logs", dbComponents.LogsCircuitBreaker)
		}
	}

	routerCfg := http.RouterConfig{
		RateLimit:         cfg.Server.RateLimit,
		RateWindow:        cfg.Server.RateWindow,
		LookupRateLimit:   cfg.Server.LookupRateLimit,
		EnableIdempotency: true,
		CORSOrigins:       cfg.Server.CORSOrigins,
		SwaggerUser:       cfg.Server.SwaggerUser,
		SwaggerPass:       cfg.Server.SwaggerPass,
		RequestTimeout:    cfg.Server.RequestTimeout,
		LoggingService:    loggingService,
	}

	return &RouterComponents{
		Handler:       handler,
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}
