package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/pkg/config"
)

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("REDIS_BALANCE_TTL", "90")
	t.Setenv("INVENTORY_ALLOW_OUT_OF_ORDER_VOID", "true")
	t.Setenv("INVENTORY_SEQUENCE_MAX_ATTEMPTS", "7")
	t.Setenv("JWT_ISSUER", "https://idp.example/")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreDriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, 90*time.Second, cfg.Redis.BalanceTTL)
	assert.True(t, cfg.Inventory.AllowOutOfOrderVoid)
	assert.Equal(t, 7, cfg.Inventory.SequenceMaxAttempts)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "https://idp.example/", cfg.JWT.Issuer)
	assert.Equal(t, 30*time.Second, cfg.JWT.Leeway)
	assert.Equal(t, 5, cfg.DB.ConnectAttempts)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
}

func TestLoad_Validaciones(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto")
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := config.Load()
	require.Error(t, err)

	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "")
	_, err = config.Load()
	require.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w", DBName: "almacen", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw@db:5432/almacen?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}
