package inventory

import (
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostPrecision es el número de decimales del costo unitario promedio.
const CostPrecision = 4

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Si la cantidad resultante no es positiva, el costo es el de la entrada.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return costoEntrada.Round(CostPrecision)
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.DivRound(sum, CostPrecision+4).Round(CostPrecision)
}

// Receive aplica una entrada sobre el saldo (en memoria). qty > 0, unitCost >= 0.
func Receive(b *entity.StockBalance, qty, unitCost decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if unitCost.IsNegative() {
		return domain.Invalid("unit_cost", "no puede ser negativo")
	}
	b.UnitCost = CostCalculator(b.Quantity, b.UnitCost, qty, unitCost)
	b.Quantity = b.Quantity.Add(qty)
	return nil
}

// Issue aplica una salida sobre el saldo y devuelve el costo unitario consumido.
// Las salidas no cambian el costo promedio. Si qty supera el saldo, el saldo queda intacto.
func Issue(b *entity.StockBalance, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if b.Quantity.LessThan(qty) {
		return decimal.Zero, &domain.InsufficientStockError{
			ProductID:   b.ProductID,
			WarehouseID: b.WarehouseID,
			Available:   b.Quantity,
			Requested:   qty,
		}
	}
	b.Quantity = b.Quantity.Sub(qty)
	return b.UnitCost, nil
}

// Decrease resta hasta qty sin bajar de cero y devuelve lo efectivamente restado.
// Usado al anular entradas cuyo stock ya pudo haberse consumido.
func Decrease(b *entity.StockBalance, qty decimal.Decimal) decimal.Decimal {
	removed := decimal.Min(qty, b.Quantity)
	if removed.IsNegative() {
		removed = decimal.Zero
	}
	b.Quantity = b.Quantity.Sub(removed)
	return removed
}
