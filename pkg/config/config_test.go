package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bitumen-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL, "las sesiones duran 7 días por defecto")
	assert.Equal(t, "bc_session", cfg.Session.CookieName)
	assert.Equal(t, 90*time.Second, cfg.Sync.StatusTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Sync.EvictTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "1")
	t.Setenv("SYNC_STATUS_TIMEOUT_SECONDS", "5")
	t.Setenv("SYNC_EVICT_TIMEOUT_SECONDS", "20")
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Sync.StatusTimeout)
	assert.Equal(t, 20*time.Second, cfg.Sync.EvictTimeout)
	assert.Equal(t, "memory", cfg.DB.Driver)
}

func TestLoad_EvictMenorQueStatusFalla(t *testing.T) {
	t.Setenv("SYNC_STATUS_TIMEOUT_SECONDS", "60")
	t.Setenv("SYNC_EVICT_TIMEOUT_SECONDS", "30")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "bitumen", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/bitumen?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}

func TestLoad_PoolFueraDeRango(t *testing.T) {
	t.Setenv("DB_MIN_CONNS", "30")
	t.Setenv("DB_MAX_CONNS", "10")
	_, err := config.Load()
	assert.Error(t, err)
}
