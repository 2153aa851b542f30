package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del préstamo de equipos.
const (
	LoanActive            = "ACTIVE"
	LoanPartiallyReturned = "PARTIALLY_RETURNED"
	LoanReturned          = "RETURNED"
)

// EquipmentLoan es un préstamo de equipos/herramientas a una persona (PRE-202601-000001).
type EquipmentLoan struct {
	ID          string
	CompanyID   string
	Number      string
	WarehouseID string
	Borrower    Receptor
	Status      string
	DueDate     *time.Time
	MovementID  string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []*EquipmentLoanLine
}

// EquipmentLoanLine: UnitCost es el costo consumido al prestar; la devolución reingresa a ese costo.
type EquipmentLoanLine struct {
	ID               string
	LoanID           string
	ProductID        string
	Quantity         decimal.Decimal
	ReturnedQuantity decimal.Decimal
	UnitCost         decimal.Decimal
}
