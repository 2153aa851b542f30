package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/pkg/config"
)

func TestPoolConfig(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		DatabaseURL: "postgres://app:secret@db:5432/almacen?sslmode=disable",
		MaxConns:    8,
		LockTimeout: 3 * time.Second,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 8, pc.MaxConns)
	assert.EqualValues(t, 2, pc.MinConns)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, "almacen-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "3000ms", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_DefaultsYNombreExplicito(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://app@db/almacen?application_name=reportes"})
	require.NoError(t, err)
	assert.EqualValues(t, 25, pc.MaxConns)
	assert.Equal(t, "reportes", pc.ConnConfig.RuntimeParams["application_name"])
	_, ok := pc.ConnConfig.RuntimeParams["lock_timeout"]
	assert.False(t, ok)

	pc, err = poolConfig(config.DBConfig{DatabaseURL: "postgres://app@db/almacen", MaxConns: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, pc.MinConns)
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://app@db:notaport/almacen"})
	require.Error(t, err)
}
