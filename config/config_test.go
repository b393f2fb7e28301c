package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_NAME", "WATCH_WRITE_INTERVAL", "PROGRESS_FLUSH_SCHEDULE", "ANALYTICS_URL", "ANALYTICS_TIMEOUT"} {
		t.Setenv(key, "")
	}

	LoadConfig()
	require.NotNil(t, AppConfig)
	assert.Equal(t, "3000", AppConfig.Port)
	assert.Equal(t, "postgres", AppConfig.DBDriver)
	assert.Equal(t, "training", AppConfig.DBName)
	assert.Equal(t, 5*time.Second, AppConfig.WatchWriteInterval)
	assert.Equal(t, "@every 15s", AppConfig.ProgressFlushSchedule)
	assert.Empty(t, AppConfig.AnalyticsURL)
	assert.Equal(t, 3*time.Second, AppConfig.AnalyticsTimeout)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "player")
	t.Setenv("WATCH_WRITE_INTERVAL", "2s")
	t.Setenv("ANALYTICS_URL", "http://collector.local/events")
	t.Setenv("ANALYTICS_TIMEOUT", "10")

	LoadConfig()
	assert.Equal(t, "8080", AppConfig.Port)
	assert.Equal(t, "sqlite", AppConfig.DBDriver)
	assert.Equal(t, "player", AppConfig.DBName)
	assert.Equal(t, 2*time.Second, AppConfig.WatchWriteInterval)
	assert.Equal(t, "http://collector.local/events", AppConfig.AnalyticsURL)
	assert.Equal(t, 10*time.Second, AppConfig.AnalyticsTimeout)
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("WATCH_WRITE_INTERVAL", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("WATCH_WRITE_INTERVAL", time.Minute))
}
