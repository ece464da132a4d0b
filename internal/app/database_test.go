//go:build !integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/guttosm/macro-service/config"
	"github.com/stretchr/testify/assert"
)

func TestInitializeDatabase_Disabled(t *testing.T) {
	components := InitializeDatabase(config.DatabaseConfig{Enabled: false})

	assert.Nil(t, components)
	assert.NoError(t, components.Close(context.Background()))
}

func TestNewBreaker(t *testing.T) {
	cb := newBreaker("mongodb-state", config.BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		Timeout:          time.Second,
	})

	assert.Equal(t, "mongodb-state", cb.Name())
	stats := cb.GetStats()
	assert.Equal(t, "closed", stats.State)
	assert.True(t, stats.IsHealthy)
}
