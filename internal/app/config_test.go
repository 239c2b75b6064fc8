package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, 5*time.Minute, cfg.Cache.PermissionTTL)
	require.Equal(t, "@every 30m", cfg.Cache.SweepSchedule)

	require.Equal(t, 180, cfg.Audit.RetentionDays)
	require.Equal(t, "@midnight", cfg.Audit.CleanupSchedule)

	require.Equal(t, 25, cfg.Emergency.MinJustificationLength)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Monitoring.Health.Enabled)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 15*time.Minute, cfg.Cache.PermissionTTL)
	require.Equal(t, 365, cfg.Audit.RetentionDays)
	require.Equal(t, 10, cfg.Emergency.MinJustificationLength)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}
