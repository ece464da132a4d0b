// Package main is the entry point of the macro service.
//
// @title           Macro Service API
// @version         1.0.0
// @description     Meal-planning macro engine: product catalog, meal plans with daily totals,
// @description     auto-balance, share links, JSON backups and food database lookup.
//
// @contact.name   API Support
// @contact.url    https://github.com/guttosm/macro-service
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @tag.name        Products
// @tag.description Product catalog
//
// @tag.name        Planner
// @tag.description Plans, meals, items and summaries
//
// @tag.name        Share
// @tag.description Compressed share links
//
// @tag.name        Session
// @tag.description First-run session
//
// @tag.name        Transfer
// @tag.description JSON export and import
//
// @tag.name        Lookup
// @tag.description Food database search and label parsing
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"

	_ "github.com/guttosm/macro-service/docs" // swagger docs

	"github.com/guttosm/macro-service/config"
	"github.com/guttosm/macro-service/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	application := app.InitializeApp(cfg)
	server := app.NewServer(application.Router, cfg.Server.Port, cfg.Server.RequestTimeout)
	server.OnShutdown(application.Close)

	if err := server.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
