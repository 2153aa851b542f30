package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/pkg/logger"
)

func TestNewWithWriter_JSONYNivel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.Config{Env: "production", Level: "WARN"}, &buf)

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Warn().Str("company_id", "T1").Msg("saldo recortado")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "T1", line["company_id"])
	assert.Equal(t, "almacen-api", line["service"])
}

func TestNewWithWriter_NivelInvalidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(logger.Config{Env: "production", Level: "verbose"}, &buf)
	log.Debug().Msg("oculto")
	log.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), "oculto")
}
