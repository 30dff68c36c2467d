package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LOCATION_POLL_INTERVAL", "not-a-duration")
	t.Setenv("REFETCH_THRESHOLD_KM", "1.5")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.LocationPollInterval)
	assert.Equal(t, 1.5, cfg.RefetchThresholdKm)
	assert.True(t, cfg.IsProduction())
}
