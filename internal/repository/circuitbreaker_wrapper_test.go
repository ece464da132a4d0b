//go:build !integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/macro-service/internal/circuitbreaker"
	"github.com/guttosm/macro-service/internal/mocks"
	"github.com/guttosm/macro-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBreaker(name string) *circuitbreaker.CircuitBreaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
		Name:             name,
		IsFailure:        repository.IsBackendFailure,
	})
}

func TestStateRepositoryWithCircuitBreaker_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("passes data through", func(t *testing.T) {
		repo := new(mocks.MockStateRepositoryInterface)
		repo.On("Load", mock.Anything, "products").Return([]byte(`[]`), nil)

		wrapped := repository.NewStateRepositoryWithCircuitBreaker(repo, newBreaker("state-ok"))
		data, err := wrapped.Load(ctx, "products")

		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), data)
		repo.AssertExpectations(t)
	})

	t.Run("missing keys do not open the circuit", func(t *testing.T) {
		repo := new(mocks.MockStateRepositoryInterface)
		repo.On("Load", mock.Anything, "planner").Return(nil, repository.ErrStateNotFound)

		cb := newBreaker("state-missing")
		wrapped := repository.NewStateRepositoryWithCircuitBreaker(repo, cb)
		for i := 0; i < 5; i++ {
			_, err := wrapped.Load(ctx, "planner")
			assert.ErrorIs(t, err, repository.ErrStateNotFound)
		}
		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	})

	t.Run("backend errors open the circuit", func(t *testing.T) {
		repo := new(mocks.MockStateRepositoryInterface)
		repo.On("Load", mock.Anything, "planner").Return(nil, errors.New("connection refused")).Times(2)

		cb := newBreaker("state-down")
		wrapped := repository.NewStateRepositoryWithCircuitBreaker(repo, cb)
		_, _ = wrapped.Load(ctx, "planner")
		_, _ = wrapped.Load(ctx, "planner")

		_, err := wrapped.Load(ctx, "planner")
		assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
		assert.Same(t, cb, wrapped.GetCircuitBreaker())
		repo.AssertExpectations(t)
	})
}

func TestStateRepositoryWithCircuitBreaker_SaveDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStateRepositoryInterface)
	repo.On("Save", mock.Anything, "products", []byte(`[1]`)).Return(nil)
	repo.On("Delete", mock.Anything, "products").Return(nil)

	wrapped := repository.NewStateRepositoryWithCircuitBreaker(repo, newBreaker("state-write"))
	assert.NoError(t, wrapped.Save(ctx, "products", []byte(`[1]`)))
	assert.NoError(t, wrapped.Delete(ctx, "products"))
	repo.AssertExpectations(t)
}

func TestLogsRepositoryWithCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("writes are dropped while open", func(t *testing.T) {
		repo := new(mocks.MockLogsRepositoryInterface)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("down")).Times(2)

		wrapped := repository.NewLogsRepositoryWithCircuitBreaker(repo, newBreaker("logs-down"))
		assert.Error(t, wrapped.Create(ctx, &repository.LogEntryDocument{}))
		assert.Error(t, wrapped.Create(ctx, &repository.LogEntryDocument{}))

		assert.NoError(t, wrapped.Create(ctx, &repository.LogEntryDocument{}))
		assert.NoError(t, wrapped.CreateMany(ctx, []*repository.LogEntryDocument{{}}))
		repo.AssertExpectations(t)
	})

	t.Run("reads pass through", func(t *testing.T) {
		repo := new(mocks.MockLogsRepositoryInterface)
		opts := repository.LogQueryOptions{Action: "share_import"}
		repo.On("Query", mock.Anything, opts).Return([]*repository.LogEntryDocument{{Action: "share_import"}}, nil)
		repo.On("Count", mock.Anything, opts).Return(int64(1), nil)

		wrapped := repository.NewLogsRepositoryWithCircuitBreaker(repo, newBreaker("logs-read"))
		entries, err := wrapped.Query(ctx, opts)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		count, err := wrapped.Count(ctx, opts)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
