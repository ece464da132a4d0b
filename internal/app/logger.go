package app

import (
	"github.com/guttosm/macro-service/config"
	"github.com/guttosm/macro-service/internal/logger"
)

// InitializeLogger configures the global logger from cfg.
func InitializeLogger(cfg config.LogConfig) {
	logger.Init(cfg.Level, cfg.Pretty)
}
