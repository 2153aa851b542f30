package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operaciones del kardex.
const (
	KardexOpEntry          = "ENTRY"
	KardexOpExit           = "EXIT"
	KardexOpPositiveAdjust = "POSITIVE_ADJUSTMENT"
	KardexOpNegativeAdjust = "NEGATIVE_ADJUSTMENT"
	KardexOpOpeningBalance = "OPENING_BALANCE"
)

// KardexEntry es un registro inmutable del kardex: una afectación al saldo de
// (producto, bodega) junto con la foto del saldo resultante.
type KardexEntry struct {
	ID              string
	Seq             int64 // orden de inserción
	CompanyID       string
	ProductID       string
	WarehouseID     string
	MovementID      string // vacío en saldos iniciales
	Date            time.Time
	Operation       string
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	BalanceQuantity decimal.Decimal
	BalanceUnitCost decimal.Decimal
	BalanceTotal    decimal.Decimal
	Description     string
	CreatedAt       time.Time
}

// Increases indica si la operación suma al saldo.
func (e *KardexEntry) Increases() bool {
	return e.Operation == KardexOpEntry || e.Operation == KardexOpPositiveAdjust || e.Operation == KardexOpOpeningBalance
}
