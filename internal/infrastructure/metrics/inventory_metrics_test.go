package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/infrastructure/metrics"
)

func TestInventoryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewInventoryMetrics(reg)

	m.MovementRecorded("ENTRY", "purchase")
	m.MovementRecorded("ENTRY", "purchase")
	m.MovementRecorded("EXIT", "loan")
	m.MovementVoided("EXIT")
	m.StockRejected()
	m.ReversalClamped()
	m.TransferConfirmed()

	count, err := testutil.GatherAndCount(reg, "almacen_movements_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "una serie por (tipo, subtipo)")

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			values[f.GetName()] += metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 3.0, values["almacen_movements_total"])
	assert.Equal(t, 1.0, values["almacen_movements_voided_total"])
	assert.Equal(t, 1.0, values["almacen_stock_rejections_total"])
	assert.Equal(t, 1.0, values["almacen_reversal_clamped_total"])
	assert.Equal(t, 1.0, values["almacen_transfers_confirmed_total"])
}
