package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	tests := []struct {
		name                       string
		stock, costo, cant, costoE string
		want                       string
	}{
		{"saldo vacío toma el costo de entrada", "0", "0", "10", "100", "100"},
		{"10@100 + 10@200", "10", "100", "10", "200", "150"},
		{"70@10 + 50@16", "70", "10", "50", "16", "12.5"},
		{"redondeo a 4 decimales", "10", "100000", "5", "120000", "106666.6667"},
		{"cantidad resultante cero", "0", "5", "0", "7", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.CostCalculator(d(tt.stock), d(tt.costo), d(tt.cant), d(tt.costoE))
			assert.True(t, got.Equal(d(tt.want)), "esperado %s, obtenido %s", tt.want, got)
		})
	}
}

func TestIssue_NoCambiaCostoYRechazaNegativo(t *testing.T) {
	b := &entity.StockBalance{ProductID: "p1", WarehouseID: "w1", Quantity: d("10"), UnitCost: d("12.5")}

	consumed, err := inventory.Issue(b, d("4"))
	require.NoError(t, err)
	assert.True(t, consumed.Equal(d("12.5")))
	assert.True(t, b.Quantity.Equal(d("6")))
	assert.True(t, b.UnitCost.Equal(d("12.5")))

	_, err = inventory.Issue(b, d("6.0001"))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(d("6")))
	assert.True(t, b.Quantity.Equal(d("6")), "el saldo no debe cambiar al rechazar")
}

func TestReceive_ValidaEntrada(t *testing.T) {
	b := &entity.StockBalance{}
	require.ErrorIs(t, inventory.Receive(b, d("0"), d("1")), domain.ErrInvalidInput)
	require.ErrorIs(t, inventory.Receive(b, d("1"), d("-1")), domain.ErrInvalidInput)
	require.NoError(t, inventory.Receive(b, d("3"), d("0")))
	assert.True(t, b.Quantity.Equal(d("3")))
}

func TestDecrease_PisoEnCero(t *testing.T) {
	b := &entity.StockBalance{Quantity: d("4"), UnitCost: d("9")}
	removed := inventory.Decrease(b, d("10"))
	assert.True(t, removed.Equal(d("4")))
	assert.True(t, b.Quantity.IsZero())
	assert.True(t, b.UnitCost.Equal(d("9")))
}
