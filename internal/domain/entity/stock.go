package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es el saldo de un producto en una bodega: cantidad y costo promedio ponderado.
// Clave única (CompanyID, ProductID, WarehouseID). Solo el motor de costeo la modifica.
type StockBalance struct {
	ID          string
	CompanyID   string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal // nunca negativa
	UnitCost    decimal.Decimal // promedio ponderado, 4 decimales
	MinStock    decimal.Decimal
	MaxStock    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TotalValue devuelve Quantity * UnitCost.
func (b *StockBalance) TotalValue() decimal.Decimal {
	return b.Quantity.Mul(b.UnitCost)
}

// BelowMinimum indica si el saldo está por debajo del stock mínimo configurado.
func (b *StockBalance) BelowMinimum() bool {
	return b.MinStock.IsPositive() && b.Quantity.LessThan(b.MinStock)
}

// BalanceKey identifica un saldo.
type BalanceKey struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
}

// Key devuelve la clave del saldo.
func (b *StockBalance) Key() BalanceKey {
	return BalanceKey{CompanyID: b.CompanyID, ProductID: b.ProductID, WarehouseID: b.WarehouseID}
}
