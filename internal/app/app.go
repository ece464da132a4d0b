// Package app wires configuration, storage, services and the HTTP router.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/macro-service/config"
	"github.com/guttosm/macro-service/internal/http"
)

// App is the initialized application.
type App struct {
	Router   *gin.Engine
	Services *ServiceComponents
	Database *DatabaseComponents
}

// InitializeApp creates and wires all application dependencies. The
// workspace is loaded before the router is returned.
func InitializeApp(cfg config.Config) *App {
	InitializeLogger(cfg.Log)

	dbComponents := InitializeDatabase(cfg.Database)

	var services *ServiceComponents
	if dbComponents != nil {
		services = InitializeServices(cfg, dbComponents.StateRepo)
	} else {
		services = InitializeServices(cfg, nil)
	}

	routerComponents := InitializeRouter(services, dbComponents, cfg)

	return &App{
		Router:   http.NewRouter(routerComponents.Handler, routerComponents.HealthHandler, routerComponents.Config),
		Services: services,
		Database: dbComponents,
	}
}

// Close releases the database connection.
func (a *App) Close(ctx context.Context) error {
	return a.Database.Close(ctx)
}
