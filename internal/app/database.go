package app

import (
	"context"

	"github.com/guttosm/macro-service/config"
	"github.com/guttosm/macro-service/internal/circuitbreaker"
	"github.com/guttosm/macro-service/internal/repository"
	"github.com/guttosm/macro-service/internal/service"
	"github.com/rs/zerolog/log"
)

// DatabaseComponents holds the MongoDB-backed repositories.
type DatabaseComponents struct {
	DB                  *repository.MongoDB
	StateRepo           repository.StateRepositoryInterface
	LoggingService      service.LoggingService
	StateCircuitBreaker *circuitbreaker.CircuitBreaker
	LogsCircuitBreaker  *circuitbreaker.CircuitBreaker
}

// InitializeDatabase connects to MongoDB and builds the state and log
// repositories. It returns nil when the database is disabled or unreachable,
// in which case the workspace lives in memory.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	db, err := repository.NewMongoDB(cfg.URI, cfg.DatabaseName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing with in-memory workspace")
		return nil
	}
	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	ttlDays := int(cfg.LogsTTL.Hours() / 24)
	if err := db.SetLogsTTL(context.Background(), ttlDays); err != nil {
		log.Warn().Err(err).Msg("Failed to set logs TTL index (may already exist)")
	}

	stateCB := newBreaker("mongodb-state", cfg.Breaker)
	logsCB := newBreaker("mongodb-logs", cfg.Breaker)

	logsRepo := repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), logsCB)

	return &DatabaseComponents{
		DB:                  db,
		StateRepo:           repository.NewStateRepositoryWithCircuitBreaker(repository.NewStateRepository(db), stateCB),
		LoggingService:      service.NewLoggingService(logsRepo),
		StateCircuitBreaker: stateCB,
		LogsCircuitBreaker:  logsCB,
	}
}

// Close disconnects from MongoDB. Safe on a nil receiver.
func (d *DatabaseComponents) Close(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close(ctx)
}

func newBreaker(name string, cfg config.BreakerConfig) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		Name:             name,
		FailureThreshold: cfg.FailureThreshold,
		SuccessThreshold: cfg.SuccessThreshold,
		Timeout:          cfg.Timeout,
	})
}
