// Package metrics expone contadores Prometheus del motor de inventario.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

var _ inventory.MetricsRecorder = (*InventoryMetrics)(nil)

// InventoryMetrics implementa inventory.MetricsRecorder.
type InventoryMetrics struct {
	movements *prometheus.CounterVec
	confirmed prometheus.Counter
	voids     *prometheus.CounterVec
	rejected  prometheus.Counter
	clamped   prometheus.Counter
}

// NewInventoryMetrics registra los colectores. registerer nil usa el registro por defecto.
func NewInventoryMetrics(registerer prometheus.Registerer) *InventoryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &InventoryMetrics{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_movements_total",
			Help: "Movimientos de inventario registrados por tipo y subtipo.",
		}, []string{"type", "subtype"}),
		confirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "almacen_transfers_confirmed_total",
			Help: "Traslados confirmados en la bodega destino.",
		}),
		voids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "almacen_movements_voided_total",
			Help: "Movimientos anulados por tipo.",
		}, []string{"type"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "almacen_stock_rejections_total",
			Help: "Salidas rechazadas por stock insuficiente.",
		}),
		clamped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "almacen_reversal_clamped_total",
			Help: "Reversiones que no pudieron descontar la cantidad completa.",
		}),
	}
	registerer.MustRegister(m.movements, m.confirmed, m.voids, m.rejected, m.clamped)
	return m
}

func (m *InventoryMetrics) MovementRecorded(movementType, subtype string) {
	m.movements.WithLabelValues(movementType, subtype).Inc()
}

func (m *InventoryMetrics) TransferConfirmed() { m.confirmed.Inc() }

func (m *InventoryMetrics) MovementVoided(movementType string) {
	m.voids.WithLabelValues(movementType).Inc()
}

func (m *InventoryMetrics) StockRejected() { m.rejected.Inc() }

func (m *InventoryMetrics) ReversalClamped() { m.clamped.Inc() }
