package repository

import (
	"context"
	"errors"

	"github.com/guttosm/macro-service/internal/circuitbreaker"
)

// IsBackendFailure reports whether err should count against a repository
// breaker. A missing document is an answer, not an outage.
func IsBackendFailure(err error) bool {
	return !errors.Is(err, ErrStateNotFound)
}

// StateRepositoryWithCircuitBreaker guards a state repository with a breaker.
type StateRepositoryWithCircuitBreaker struct {
	repo           StateRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewStateRepositoryWithCircuitBreaker wraps repo. Configure cb with
// IsBackendFailure so missing keys do not open the circuit.
func NewStateRepositoryWithCircuitBreaker(repo StateRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *StateRepositoryWithCircuitBreaker {
	return &StateRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// Load reads through the breaker. ErrCircuitOpen is returned as-is so the
// caller can fall back to defaults.
func (r *StateRepositoryWithCircuitBreaker) Load(ctx context.Context, key string) ([]byte, error) {
	return circuitbreaker.Do(ctx, r.circuitBreaker, func(ctx context.Context) ([]byte, error) {
		return r.repo.Load(ctx, key)
	})
}

// Save writes through the breaker.
func (r *StateRepositoryWithCircuitBreaker) Save(ctx context.Context, key string, data []byte) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Save(ctx, key, data)
	})
}

// Delete removes through the breaker.
func (r *StateRepositoryWithCircuitBreaker) Delete(ctx context.Context, key string) error {
	return r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Delete(ctx, key)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *StateRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}

// LogsRepositoryWithCircuitBreaker guards a logs repository with a breaker.
type LogsRepositoryWithCircuitBreaker struct {
	repo           LogsRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewLogsRepositoryWithCircuitBreaker wraps repo.
func NewLogsRepositoryWithCircuitBreaker(repo LogsRepositoryInterface, cb *circuitbreaker.CircuitBreaker) *LogsRepositoryWithCircuitBreaker {
	return &LogsRepositoryWithCircuitBreaker{repo: repo, circuitBreaker: cb}
}

// Create stores an entry. Writes are dropped silently while the circuit is open.
func (r *LogsRepositoryWithCircuitBreaker) Create(ctx context.Context, entry *LogEntryDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.Create(ctx, entry)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// CreateMany stores entries. Writes are dropped silently while the circuit is open.
func (r *LogsRepositoryWithCircuitBreaker) CreateMany(ctx context.Context, entries []*LogEntryDocument) error {
	err := r.circuitBreaker.Execute(ctx, func() error {
		return r.repo.CreateMany(ctx, entries)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return nil
	}
	return err
}

// Query reads entries through the breaker.
func (r *LogsRepositoryWithCircuitBreaker) Query(ctx context.Context, opts LogQueryOptions) ([]*LogEntryDocument, error) {
	return circuitbreaker.Do(ctx, r.circuitBreaker, func(ctx context.Context) ([]*LogEntryDocument, error) {
		return r.repo.Query(ctx, opts)
	})
}

// Count counts entries through the breaker.
func (r *LogsRepositoryWithCircuitBreaker) Count(ctx context.Context, opts LogQueryOptions) (int64, error) {
	return circuitbreaker.Do(ctx, r.circuitBreaker, func(ctx context.Context) (int64, error) {
		return r.repo.Count(ctx, opts)
	})
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *LogsRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
